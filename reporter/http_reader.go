// Reader is a small client of the http reporter, used by the cli and tests.

package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
	client     *http.Client
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
		client:     http.DefaultClient,
	}
}

// ReaderError is a non-2xx reply from the reporter.
type ReaderError struct {
	StatusCode int
	Body       string
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("reporter returned %d: %s", e.StatusCode, e.Body)
}

func (hr *HttpReader) base() string {
	return "http://" + hr.serverIP + ":" + hr.serverPort
}

func (hr *HttpReader) GetHello() (string, error) {
	body, err := hr.do(context.Background(), http.MethodGet, ROUTE_HELLO, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetEscrowStatus returns the raw JSON status of an escrow contract.
func (hr *HttpReader) GetEscrowStatus(ctx context.Context, contract string) (map[string]interface{}, error) {
	path := strings.Replace(ROUTE_ESCROW_STATUS, ":address", contract, 1)
	body, err := hr.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Finalize asks the reporter to finalize a burn. It returns the mintTx
// field of the reply.
func (hr *HttpReader) Finalize(ctx context.Context, txHash, expectedMintRecipient string) (string, error) {
	req := map[string]string{"txHash": txHash}
	if expectedMintRecipient != "" {
		req["expectedMintRecipient"] = expectedMintRecipient
	}
	body, err := hr.do(ctx, http.MethodPost, ROUTE_FINALIZE, req)
	if err != nil {
		return "", err
	}

	var resp struct {
		OK     bool   `json:"ok"`
		MintTx string `json:"mintTx"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("finalize failed: %s", resp.Error)
	}
	return resp.MintTx, nil
}

func (hr *HttpReader) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, hr.base()+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hr.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, &ReaderError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
