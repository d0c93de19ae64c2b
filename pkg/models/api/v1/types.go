package v1

type ReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AdminRequest struct {
	Action string `json:"action"`
	IP     string `json:"ip,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BlacklistResponse struct {
	BlacklistedIPs []string `json:"blacklisted_ips"`
}
