package model

type GetBalanceRequest struct{}

type GetBalanceResponse Balance

type GetLedgerRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLedgerResponse struct {
	Entries []LedgerEntry `json:"entries"`
}
