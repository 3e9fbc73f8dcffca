package model

// SubmitReceiptRequest is the body for POST /Device/v1/{deviceId}/SubmitReceipt.
type SubmitReceiptRequest struct {
	Receipt            Receipt `json:"Receipt"`
	DeviceModelVersion string  `json:"DeviceModelVersion"`
}

// SubmitReceiptResponse is the authority's acceptance body. OperationID is the
// only field guaranteed on success; the rest are server-assigned extras.
type SubmitReceiptResponse struct {
	OperationID            string           `json:"operationID"`
	ReceiptID              int64            `json:"receiptID,omitempty"`
	ServerDate             string           `json:"serverDate,omitempty"`
	ReceiptServerSignature *DeviceSignature `json:"receiptServerSignature,omitempty"`
}
