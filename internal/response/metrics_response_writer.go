package response

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

type MetricsResponseWriter struct {
	wrapped       http.ResponseWriter
	StatusCode    int
	BytesCount    int
	headerWritten bool
}

func NewMetricsResponseWriter(w http.ResponseWriter) *MetricsResponseWriter {
	return &MetricsResponseWriter{
		wrapped:    w,
		StatusCode: http.StatusOK,
	}
}

func (mw *MetricsResponseWriter) Header() http.Header {
	return mw.wrapped.Header()
}

func (mw *MetricsResponseWriter) WriteHeader(statusCode int) {
	mw.wrapped.WriteHeader(statusCode)

	if !mw.headerWritten {
		mw.StatusCode = statusCode
		mw.headerWritten = true
	}
}

func (mw *MetricsResponseWriter) Write(b []byte) (int, error) {
	mw.headerWritten = true
	n, err := mw.wrapped.Write(b)
	mw.BytesCount += n
	return n, err
}

// Hijack hands the connection over for protocol upgrades (websockets). The
// status is recorded as 101 since nothing more travels through this writer
// after the handoff.
func (mw *MetricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := mw.wrapped.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response: underlying writer does not support hijacking")
	}

	if !mw.headerWritten {
		mw.StatusCode = http.StatusSwitchingProtocols
		mw.headerWritten = true
	}

	return hj.Hijack()
}

func (mw *MetricsResponseWriter) Unwrap() http.ResponseWriter {
	return mw.wrapped
}
