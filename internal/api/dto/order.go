package dto

type OrderActionRequest struct {
	AgentID int64 `json:"agent_id"`
}

type OrderActionResponse struct {
	OrderID int64  `json:"order_id"`
	AgentID int64  `json:"agent_id"`
	Status  string `json:"status"`
}

type LocationIngestResponse struct {
	Accepted int `json:"accepted"`
}
