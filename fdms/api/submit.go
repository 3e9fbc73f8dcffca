package api

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/openfiscal/go-fdms-bridge/fdms/model"
	"github.com/openfiscal/go-fdms-bridge/fdms/validate"
)

var logger = log.WithField("component", "fdms.api")

// RejectionKind classifies a failed submission.
type RejectionKind string

const (
	RejectionValidation RejectionKind = "ValidationError"
	RejectionBadRequest RejectionKind = "BadRequest"
	RejectionAPI        RejectionKind = "ApiError"
	RejectionNetwork    RejectionKind = "NetworkError"
)

// Accepted is a confirmed fiscalization with the server's operation id.
type Accepted struct {
	OperationID string
	Response    *model.SubmitReceiptResponse
}

// Rejected is a terminal failure for this attempt. Details carry field paths
// on validation failures and the troubleshooting checklist on BadRequest.
type Rejected struct {
	Kind    RejectionKind
	Message string
	Details []string
}

// Outcome is the result of one submission attempt, exactly one side set.
type Outcome struct {
	Accepted *Accepted
	Rejected *Rejected
}

func (o Outcome) OK() bool { return o.Accepted != nil }

// Shown to the operator whenever the server rejects a request that passed the
// local pre-flight checks.
var badRequestChecklist = []string{
	"verify the device id in the request path matches the registered device",
	"confirm DeviceModelName and DeviceModelVersion match the enrolled values",
	"check that receiptGlobalNo continues the device's confirmed sequence",
	"check that the previous receipt hash used for signing matches the last accepted receipt",
	"confirm all monetary values are rounded to 2 decimal places",
	"confirm the payments sum equals receiptTotal plus all tax amounts",
}

// SubmitService performs the full guarded exchange: pre-flight schema check,
// authenticated POST, outcome classification.
type SubmitService struct {
	client *Client
}

func NewSubmitService(client *Client) *SubmitService {
	return &SubmitService{client: client}
}

// Submit validates the assembled request and, only if it passes, posts it to
// the authority. A pre-flight failure short-circuits with no network call.
func (s *SubmitService) Submit(ctx context.Context, deviceID int, receipt *model.Receipt) Outcome {
	headers := validate.Headers{
		ContentType:        "application/json",
		DeviceModelName:    s.client.DeviceModelName(),
		DeviceModelVersion: s.client.DeviceModelVersion(),
	}

	if ok, fieldErrors := validate.CheckSubmission(headers, deviceID, receipt); !ok {
		details := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			details = append(details, fe.Error())
		}
		logger.WithField("deviceId", deviceID).Warnf("pre-flight validation failed: %v", details)
		return Outcome{Rejected: &Rejected{
			Kind:    RejectionValidation,
			Message: "request failed pre-flight protocol validation",
			Details: details,
		}}
	}

	if !validate.PaymentsCoverTotal(receipt) {
		// Enforced remotely; logged here to explain an otherwise opaque 400.
		logger.WithField("invoiceNo", receipt.InvoiceNo).
			Warn("payments do not cover receipt total plus taxes, server will likely reject")
	}

	resp, err := s.client.SubmitReceipt(ctx, deviceID, &model.SubmitReceiptRequest{
		Receipt:            *receipt,
		DeviceModelVersion: s.client.DeviceModelVersion(),
	})
	if err != nil {
		return classify(err)
	}

	if resp.OperationID == "" {
		return Outcome{Rejected: &Rejected{
			Kind:    RejectionAPI,
			Message: "server accepted the request but returned no operationID",
		}}
	}

	logger.WithFields(log.Fields{
		"deviceId":    deviceID,
		"operationId": resp.OperationID,
	}).Debug("receipt accepted")

	return Outcome{Accepted: &Accepted{OperationID: resp.OperationID, Response: resp}}
}

func classify(err error) Outcome {
	reqErr, ok := err.(*RequestError)
	if !ok {
		return Outcome{Rejected: &Rejected{Kind: RejectionNetwork, Message: err.Error()}}
	}

	switch {
	case reqErr.StatusCode == 0:
		return Outcome{Rejected: &Rejected{
			Kind:    RejectionNetwork,
			Message: reqErr.Error(),
		}}
	case reqErr.StatusCode == 400:
		return Outcome{Rejected: &Rejected{
			Kind:    RejectionBadRequest,
			Message: reqErr.Body,
			Details: badRequestChecklist,
		}}
	default:
		return Outcome{Rejected: &Rejected{
			Kind:    RejectionAPI,
			Message: reqErr.Error(),
			Details: []string{reqErr.Body},
		}}
	}
}
