package admin

import (
	"github.com/licence-store/internal/authz"
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"
	"github.com/licence-store/internal/service"
)

var actionErrorRules = []shared.MappedError{
	{Target: service.ErrActionNotFound, Code: response.CodeNotFound, Key: "error.action_not_found"},
}

var failedEmailErrorRules = []shared.MappedError{
	{Target: service.ErrFailedEmailNotFound, Code: response.CodeNotFound, Key: "error.failed_email_not_found"},
}

var draftErrorRules = []shared.MappedError{
	{Target: service.ErrDraftNotFound, Code: response.CodeNotFound, Key: "error.draft_not_found"},
	{Target: service.ErrDraftClientMissing, Code: response.CodeBadRequest, Key: "error.draft_client_missing"},
	{Target: service.ErrDraftTypeInvalid, Code: response.CodeBadRequest, Key: "error.draft_type_invalid"},
	{Target: service.ErrActionNotFound, Code: response.CodeNotFound, Key: "error.action_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrQuantityInvalid, Code: response.CodeBadRequest, Key: "error.quantity_invalid"},
	{Target: service.ErrLineIndexInvalid, Code: response.CodeBadRequest, Key: "error.line_index_invalid"},
	{Target: service.ErrCatalogUnavailable, Code: response.CodeBadGateway, Key: "error.catalog_unavailable"},
}

var authzErrorRules = []shared.MappedError{
	{Target: authz.ErrRoleRequired, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: authz.ErrActionRequired, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: authz.ErrUnavailable, Code: response.CodeInternal, Key: "error.internal"},
}
