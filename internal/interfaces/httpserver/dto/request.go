package dto

// ChatRequest is the body of POST /v1/claudio/chat.
type ChatRequest struct {
	CaseID      string `json:"caseId"`
	UserAddress string `json:"userAddress"`
	Message     string `json:"message" binding:"required"`
}

// GenerateContractRequest is the body of
// POST /v1/claudio/generate-contract-for-case.
type GenerateContractRequest struct {
	CaseID string `json:"caseId" binding:"required"`
}

// CreateCaseRequest is the body of POST /v1/cases.
type CreateCaseRequest struct {
	CaseID      string `json:"caseId" binding:"required"`
	UserAddress string `json:"userAddress" binding:"required"`
	Title       string `json:"title" binding:"required"`
}
