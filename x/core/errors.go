package core

type ErrorNotFound struct {
}

func (e ErrorNotFound) Error() string {
	return "Not Found"
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

type ErrorAlreadyExists struct {
}

func (e ErrorAlreadyExists) Error() string {
	return "Already Exists"
}

func NewErrorAlreadyExists() ErrorAlreadyExists {
	return ErrorAlreadyExists{}
}

type ErrorSoldOut struct {
}

func (e ErrorSoldOut) Error() string {
	return "Sold Out"
}

func NewErrorSoldOut() ErrorSoldOut {
	return ErrorSoldOut{}
}

type ErrorInvalidStatus struct {
}

func (e ErrorInvalidStatus) Error() string {
	return "Invalid Status"
}

func NewErrorInvalidStatus() ErrorInvalidStatus {
	return ErrorInvalidStatus{}
}
