package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

type signaturePayload struct {
	EventID     string `json:"eventId"`
	WorkOrderID string `json:"workOrderId"`
	TokenID     string `json:"tokenId,omitempty"`
	Actor       string `json:"actor"`
	Action      string `json:"action"`
	FromStatus  string `json:"fromStatus,omitempty"`
	ToStatus    string `json:"toStatus,omitempty"`
	Detail      string `json:"detail,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func buildSignaturePayload(ev *Event) signaturePayload {
	payload := signaturePayload{
		EventID:     ev.EventID.String(),
		WorkOrderID: ev.WorkOrderID.String(),
		Actor:       ev.Actor,
		Action:      string(ev.Action),
		FromStatus:  ev.FromStatus,
		ToStatus:    ev.ToStatus,
		CreatedAt:   ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if ev.TokenID != nil {
		payload.TokenID = ev.TokenID.String()
	}
	if len(ev.Detail) > 0 {
		payload.Detail = base64.StdEncoding.EncodeToString(ev.Detail)
	}
	return payload
}

// Sign generates an HMAC-SHA256 signature for the event.
func Sign(ev *Event, key []byte) ([]byte, error) {
	payload := buildSignaturePayload(ev)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(data)
	return mac.Sum(nil), nil
}

// VerifySignature checks the HMAC signature for the event.
func VerifySignature(ev *Event, key []byte) (bool, error) {
	if len(ev.Signature) == 0 {
		return false, nil
	}
	expected, err := Sign(ev, key)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, ev.Signature), nil
}
