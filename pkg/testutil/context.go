package testutil

import (
	"net/http"

	"rentflow/pkg/domain"
	"rentflow/pkg/requestcontext"
)

// AsAccount marks the request as authenticated by account, the way the
// auth middleware would.
func AsAccount(req *http.Request, account domain.AccountID) *http.Request {
	return req.WithContext(requestcontext.WithAccountID(req.Context(), account))
}
