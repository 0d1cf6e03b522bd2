package attestation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/TEENet-io/escrow-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// State is the poll state for one burn tx. It is a value: Step never
// mutates its input.
type State struct {
	Phase       Phase
	Attempts    int
	MaxAttempts int

	// lower-cased 0x address, empty when no recipient hint was given
	ExpectedRecipient string

	// phase observed by the last attempt, kept when Phase becomes TIMED_OUT
	Observed Phase
	LastErr  string

	Result *AttestedMessage
}

func NewState(maxAttempts int, expectedRecipient *ethcommon.Address) State {
	s := State{Phase: PhaseQuery, MaxAttempts: maxAttempts}
	if expectedRecipient != nil {
		s.ExpectedRecipient = strings.ToLower(expectedRecipient.Hex())
	}
	return s
}

// Step consumes the observation of one QUERY and returns the next state.
// Terminal states are returned unchanged.
func Step(s State, obs Observation) State {
	if s.Phase.IsTerminal() {
		return s
	}

	next := s
	next.Attempts++
	next.LastErr = ""
	next.Result = nil

	switch {
	case !obs.ok():
		next.Observed = PhaseHTTPError
		next.LastErr = obs.describe()
	case len(obs.Messages) == 0:
		next.Observed = PhaseEmpty
	default:
		m, _ := SelectCandidate(obs.Messages, s.ExpectedRecipient)
		if isPending(m) {
			next.Observed = PhasePending
			break
		}
		result, err := toAttested(m)
		if err != nil {
			next.Observed = PhaseHTTPError
			next.LastErr = err.Error()
			break
		}
		next.Observed = PhaseReady
		next.Result = result
	}

	next.Phase = next.Observed
	if next.Phase != PhaseReady && next.Attempts >= next.MaxAttempts {
		next.Phase = PhaseTimedOut
	}
	return next
}

// SelectCandidate picks the message to finalize. The recipient hint only
// narrows the set when something matches. Version "2" is preferred first,
// then status "complete"; ties keep response order.
func SelectCandidate(msgs []Message, expectedRecipient string) (Message, bool) {
	if len(msgs) == 0 {
		return Message{}, false
	}

	candidates := msgs
	if expectedRecipient != "" {
		var filtered []Message
		for _, m := range msgs {
			if recipientMatches(m.mintRecipient(), expectedRecipient) {
				filtered = append(filtered, m)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	sorted := make([]Message, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) > rank(sorted[j])
	})
	return sorted[0], true
}

func rank(m Message) int {
	r := 0
	if m.CctpVersion == PreferredVersion {
		r += 2
	}
	if m.Status == StatusComplete {
		r++
	}
	return r
}

func isPending(m Message) bool {
	if m.Attestation == AttestationPending || m.Status == StatusPendingConfirmations {
		return true
	}
	return common.Trim0xPrefix(m.Attestation) == "" || common.Trim0xPrefix(m.Message) == ""
}

// recipientMatches compares case-insensitively. Iris may report the
// recipient either as an address or as its 32 byte padded form.
func recipientMatches(got, want string) bool {
	got = strings.ToLower(strings.TrimSpace(got))
	if len(got) == 66 && strings.HasPrefix(got, "0x") {
		got = "0x" + got[26:]
	}
	return got != "" && got == want
}

func toAttested(m Message) (*AttestedMessage, error) {
	msg, err := decodeHex(m.Message)
	if err != nil {
		return nil, fmt.Errorf("invalid message hex: %w", err)
	}
	att, err := decodeHex(m.Attestation)
	if err != nil {
		return nil, fmt.Errorf("invalid attestation hex: %w", err)
	}

	res := &AttestedMessage{
		Message:     msg,
		Attestation: att,
		CctpVersion: string(m.CctpVersion),
		Status:      m.Status,
		EventNonce:  m.EventNonce,
	}
	if m.DecodedMessageBody != nil {
		res.Decoded = *m.DecodedMessageBody
	} else if body, err := ParseBurnMessage(msg); err == nil {
		res.Decoded = body.Decoded()
	}
	return res, nil
}
