package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/licence-store/internal/models"
)

// FailedEmails 发送失败邮件资源
func (c *Client) FailedEmails() Resource[models.FailedEmail, FailedEmailInput] {
	return Resource[models.FailedEmail, FailedEmailInput]{client: c, path: "/failed-emails"}
}

// ResolveFailedEmail 标记已处理或重新打开
func (c *Client) ResolveFailedEmail(ctx context.Context, auth *Auth, id uint, resolved bool) (*models.FailedEmail, error) {
	var email models.FailedEmail
	body := FailedEmailInput{Resolved: resolved}
	path := c.FailedEmails().itemPath(id)
	if err := c.do(ctx, call{method: http.MethodPatch, path: path, body: body, out: &email, auth: auth}); err != nil {
		return nil, err
	}
	return &email, nil
}

// RetryFailedEmail 请求后端重新发送
func (c *Client) RetryFailedEmail(ctx context.Context, auth *Auth, id uint) error {
	path := "/failed-emails/" + strconv.FormatUint(uint64(id), 10) + "/retry"
	return c.do(ctx, call{method: http.MethodPost, path: path, auth: auth})
}
