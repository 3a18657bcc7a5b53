package kit

import "fmt"

// Fault is a structured boundary error. Tool callers receive it as a fixed
// {code, message, hint} envelope instead of a bare error string, so clients
// can branch on Code.
type Fault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// NewFault builds a Fault with the given fixed code.
func NewFault(code, message, hint string) *Fault {
	return &Fault{Code: code, Message: message, Hint: hint}
}

// Well-known boundary fault codes.
const (
	ErrOrderInvalid = "ERR_ORDER_INVALID"
	ErrArticleEmpty = "ERR_ARTICLE_EMPTY"
	ErrPlanInvalid  = "ERR_PLAN_INVALID"
	ErrToolInternal = "ERR_TOOL_INTERNAL"
)
