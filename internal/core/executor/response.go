package executor

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mohammed-shakir/eodata-query/internal/core/model"
)

type productsResponse struct {
	Value    []productJSON `json:"value"`
	NextLink string        `json:"@odata.nextLink"`
}

type productJSON struct {
	ID            string `json:"Id"`
	Name          string `json:"Name"`
	ContentLength int64  `json:"ContentLength"`
	Online        bool   `json:"Online"`
	S3Path        string `json:"S3Path"`
	ContentDate   struct {
		Start string `json:"Start"`
		End   string `json:"End"`
	} `json:"ContentDate"`
	Attributes []struct {
		Name  string          `json:"Name"`
		Value json.RawMessage `json:"Value"`
	} `json:"Attributes"`
}

// storage path from the S3Path attribute, else the top level field
func (p productJSON) storagePath() string {
	for _, a := range p.Attributes {
		if a.Name != "S3Path" {
			continue
		}
		var s string
		if err := json.Unmarshal(a.Value, &s); err == nil && s != "" {
			return s
		}
	}
	return p.S3Path
}

func (p productJSON) toModel() model.Product {
	var start time.Time
	if s := strings.TrimSpace(p.ContentDate.Start); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			start = t.UTC()
		}
	}
	return model.Product{
		ID:            p.ID,
		Name:          p.Name,
		ContentLength: p.ContentLength,
		SensingStart:  start,
		StoragePath:   p.storagePath(),
		Online:        p.Online,
	}
}

// OData error bodies come as {"detail": ...} or {"error": {"message": ...}}
func errorMessage(body []byte) string {
	var v struct {
		Detail json.RawMessage `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &v) != nil {
		return ""
	}
	if v.Error.Message != "" {
		return v.Error.Message
	}
	if v.Message != "" {
		return v.Message
	}
	if len(v.Detail) > 0 {
		var s string
		if json.Unmarshal(v.Detail, &s) == nil {
			return s
		}
		var d struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(v.Detail, &d) == nil {
			return d.Message
		}
	}
	return ""
}
