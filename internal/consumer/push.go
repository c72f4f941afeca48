package consumer

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskfleet/eventd/internal/event"
)

// maxPushBodySize bounds an inbound push body at 1MB.
const maxPushBodySize = 1 << 20

// statusResponse is the body returned to the broker for every push.
type statusResponse struct {
	Status event.Status `json:"status"`
}

// PushHandler exposes a pipeline as an inbound push endpoint. The
// response is always HTTP 200; the status code in the body is the
// broker's redelivery signal.
func PushHandler(pipeline *Pipeline, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBodySize))
		if err != nil {
			logger.Error("failed_to_read_push_body", zap.Error(err))
			writeStatus(w, logger, event.StatusDrop)
			return
		}

		status := pipeline.Process(r.Context(), body)
		writeStatus(w, logger, status)
	}
}

func writeStatus(w http.ResponseWriter, logger *zap.Logger, status event.Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(statusResponse{Status: status}); err != nil {
		logger.Error("failed_to_encode_status_response", zap.Error(err))
	}
}
