package middleware

import (
	"io"
	"net/http"
)

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}
