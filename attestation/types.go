package attestation

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	// Iris returns this literal in place of the attestation until it is signed
	AttestationPending = "PENDING"

	StatusComplete             = "complete"
	StatusPendingConfirmations = "pending_confirmations"

	PreferredVersion = "2"

	MaxRequestsPerSecond = 35
)

// Version accepts both the string and the numeric form of cctpVersion.
type Version string

func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Version(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Version(n.String())
	return nil
}

type DecodedMessageBody struct {
	BurnToken     string `json:"burnToken,omitempty"`
	MintRecipient string `json:"mintRecipient,omitempty"`
	Amount        string `json:"amount,omitempty"`
	MessageSender string `json:"messageSender,omitempty"`
	MaxFee        string `json:"maxFee,omitempty"`
	FeeExecuted   string `json:"feeExecuted,omitempty"`
}

// Message is one entry of GET /v2/messages/{domain}.
type Message struct {
	Message            string              `json:"message"`
	Attestation        string              `json:"attestation"`
	Status             string              `json:"status"`
	CctpVersion        Version             `json:"cctpVersion"`
	EventNonce         string              `json:"eventNonce,omitempty"`
	DecodedMessageBody *DecodedMessageBody `json:"decodedMessageBody,omitempty"`
}

func (m *Message) mintRecipient() string {
	if m.DecodedMessageBody == nil {
		return ""
	}
	return m.DecodedMessageBody.MintRecipient
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

// AttestedMessage is a message Iris has signed, ready for receiveMessage.
type AttestedMessage struct {
	Message     []byte
	Attestation []byte
	Decoded     DecodedMessageBody
	CctpVersion string
	Status      string
	EventNonce  string
}

type Phase string

const (
	PhaseQuery     Phase = "QUERY"
	PhaseEmpty     Phase = "EMPTY"
	PhasePending   Phase = "PENDING"
	PhaseReady     Phase = "READY"
	PhaseHTTPError Phase = "HTTP_ERROR"
	PhaseTimedOut  Phase = "TIMED_OUT"
)

func (p Phase) IsTerminal() bool {
	return p == PhaseReady || p == PhaseTimedOut
}

// Observation is the outcome of one attestation request.
type Observation struct {
	StatusCode int
	Err        error
	Messages   []Message
}

func (o Observation) ok() bool {
	return o.Err == nil && o.StatusCode >= 200 && o.StatusCode < 300
}

func (o Observation) describe() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return "http status " + strconv.Itoa(o.StatusCode)
}
