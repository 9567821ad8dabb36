package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adaptive-voice/internal/api/v1/dto"
	"adaptive-voice/internal/app/network"
)

const (
	defaultProbeSize = 32 << 10 // 32 KiB
	maxProbeSize     = 1 << 20  // 1 MiB
)

// ProbeHandler backs the client-side network quality tester.
type ProbeHandler struct {
	tester *network.Tester
}

// NewProbeHandler creates a probe handler. The tester measures quality from
// the server's vantage point for the /probe/quality endpoint.
func NewProbeHandler(tester *network.Tester) *ProbeHandler {
	return &ProbeHandler{tester: tester}
}

// Payload handles GET /api/v1/probe: a fixed-size incompressible-looking
// payload the client times to estimate bandwidth and latency.
func (h *ProbeHandler) Payload(c *gin.Context) {
	size := defaultProbeSize
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxProbeSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and 1048576"})
			return
		}
		size = parsed
	}

	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i*31 + 7)
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/octet-stream", payload)
}

// Quality handles GET /api/v1/probe/quality: the server-measured profile
// against the configured probe URL.
func (h *ProbeHandler) Quality(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProbeResponse{
		Quality: h.tester.TestQuality(c.Request.Context()),
	})
}
