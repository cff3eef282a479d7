package health

import (
	"encoding/json"
	"net/http"
)

// Status is static: the service holds no connections that can go stale.
type Status struct {
	Catalogue     string
	ExportEnabled bool
}

func Readiness(st Status) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			Status        string `json:"status"`
			Catalogue     string `json:"catalogue,omitempty"`
			ExportEnabled bool   `json:"export_enabled"`
		}
		ready := st.Catalogue != ""
		out := resp{Status: "not_ready", ExportEnabled: st.ExportEnabled}
		if ready {
			out.Status = "ready"
			out.Catalogue = st.Catalogue
		}
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
