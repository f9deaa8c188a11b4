package models

type MetaData struct {
	BatchNumber  int  `json:"batch_number"`
	BatchSize    int  `json:"batch_size"`
	TotalBatches int  `json:"total_batches"`
	Cached       bool `json:"cached"`
}

type StationsResponse struct {
	Success  bool      `json:"success"`
	Data     []Station `json:"data"`
	Message  string    `json:"message,omitempty"`
	MetaData MetaData  `json:"metadata"`
}

type ReportsResponse struct {
	Success  bool     `json:"success"`
	Data     []Report `json:"data"`
	Message  string   `json:"message,omitempty"`
	MetaData MetaData `json:"metadata"`
}
