package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// PatientIndex keeps a patients index in Elasticsearch for name/email search.
type PatientIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewPatientIndex(es *elasticsearch.Client, index string) *PatientIndex {
	return &PatientIndex{es: es, index: index}
}

type patientDoc struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Age              int    `json:"age"`
	RegistrationDate string `json:"registration_date"`
}

func (x *PatientIndex) Index(ctx context.Context, p entity.Patient) error {
	b, err := json.Marshal(patientDoc{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		Phone:            p.Phone,
		Age:              p.Age,
		RegistrationDate: p.RegistrationDate,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index patient %s: %s", p.ID, res.Status())
	}
	return nil
}

func (x *PatientIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// a missing document is already deleted
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete patient %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over name and email and returns patient ids by score.
func (x *PatientIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	b, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"email^2", "name"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	})
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search patients: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Mapping is the index mapping used when the patients index is created.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":                {"type": "keyword"},
      "name":              {"type": "text"},
      "email":             {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "phone":             {"type": "keyword"},
      "age":               {"type": "integer"},
      "registration_date": {"type": "date", "format": "yyyy-MM-dd"}
    }
  }
}`
