package admin

import (
	"github.com/licence-store/internal/http/handlers/shared"
	"github.com/licence-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PolicyRequest 角色策略
type PolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GetRolePolicies 查看角色策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.ListRolePolicies(c.Param("role"))
	if err != nil {
		shared.RespondMappedError(c, err, authzErrorRules)
		return
	}
	response.Success(c, policies)
}

// GrantPolicy 授予角色策略
func (h *Handler) GrantPolicy(c *gin.Context) {
	var req PolicyRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		shared.RespondMappedError(c, err, authzErrorRules)
		return
	}
	shared.RequestLog(c).Infow("admin_authz_policy_granted", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, req)
}

// RevokePolicy 撤销角色策略
func (h *Handler) RevokePolicy(c *gin.Context) {
	var req PolicyRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		shared.RespondMappedError(c, err, authzErrorRules)
		return
	}
	shared.RequestLog(c).Infow("admin_authz_policy_revoked", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, req)
}
