package ui

// ToastKind selects the toast styling.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification shown once by the page shell.
type Toast struct {
	Kind    ToastKind
	Message string
}

func Success(msg string) Toast { return Toast{Kind: ToastSuccess, Message: msg} }
func Failure(msg string) Toast { return Toast{Kind: ToastError, Message: msg} }
