package middleware

import (
	"net/http"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := auth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !sess.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
