package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/apictl/packages/response"
)

// convertResponse reads the whole body. Header names are lowercased and
// repeated values are joined with ", ".
func convertResponse(httpResp *http.Response) (*response.Response, error) {
	headers := make(map[string]string, len(httpResp.Header))
	for k, values := range httpResp.Header {
		v := strings.Join(values, ", ")
		if !isVisibleASCII(v) {
			return nil, fmt.Errorf("%w: %s", ErrNonASCIIHeader, k)
		}
		headers[strings.ToLower(k)] = v
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &response.Response{
		StatusCode:      uint16(httpResp.StatusCode),
		ProtocolVersion: httpResp.Proto,
		Headers:         headers,
		Body:            string(body),
	}, nil
}

func isVisibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b != '\t' && (b < 0x20 || b > 0x7e) {
			return false
		}
	}
	return true
}
