package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvTripcoreMode is the environment variable name for mode selection.
	EnvTripcoreMode = "TRIPCORE_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// ClientFactory builds one designer client per upstream credential.
type ClientFactory struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	mock       bool
}

var _ Factory = (*ClientFactory)(nil)

// NewClientFactory creates a factory. If TRIPCORE_MODE=MOCK, every client
// it hands out is a MockClient.
func NewClientFactory(baseURL string, timeout time.Duration, maxRetries int) *ClientFactory {
	mock := os.Getenv(EnvTripcoreMode) == ModeMock
	if mock {
		log.Println("TRIPCORE_MODE=MOCK detected, using mock designer client")
	}
	return &ClientFactory{
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: maxRetries,
		mock:       mock,
	}
}

// ForCredential returns the client bound to one upstream credential.
func (f *ClientFactory) ForCredential(credential string) LLMClient {
	if f.mock {
		return NewMockClient()
	}
	return NewClient(f.baseURL, credential, f.timeout, f.maxRetries)
}
