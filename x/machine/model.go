package machine

type statusRequest struct {
	Status string `json:"status"`
}
