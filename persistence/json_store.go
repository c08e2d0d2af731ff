package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"frontier-realm/server/models"
)

// maxJSONSamples bounds the samples kept in the JSON file; older ones are
// dropped first.
const maxJSONSamples = 5000

// JSONStore records diagnostics in a local JSON file.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON file
type JSONData struct {
	Sessions map[string]*models.SessionSummary `json:"sessions"`
	Samples  []models.StatsSample              `json:"samples"`
}

// NewJSONStore opens or creates the JSON diagnostics file
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Sessions: make(map[string]*models.SessionSummary),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

// loadFromFile loads data from the JSON file
func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Sessions == nil {
		js.data.Sessions = make(map[string]*models.SessionSummary)
	}
	return nil
}

// saveToFile saves data to the JSON file
func (js *JSONStore) saveToFile() error {
	js.mutex.RLock()
	data, err := json.MarshalIndent(js.data, "", "  ")
	js.mutex.RUnlock()
	if err != nil {
		return err
	}

	return os.WriteFile(js.filePath, data, 0644)
}

// RecordSession inserts or replaces a session summary
func (js *JSONStore) RecordSession(summary models.SessionSummary) error {
	js.mutex.Lock()
	js.data.Sessions[summary.SessionID] = &summary
	js.mutex.Unlock()

	return js.saveToFile()
}

// RecordStats appends a sample
func (js *JSONStore) RecordStats(sample models.StatsSample) error {
	js.mutex.Lock()
	js.data.Samples = append(js.data.Samples, sample)
	if over := len(js.data.Samples) - maxJSONSamples; over > 0 {
		js.data.Samples = append(js.data.Samples[:0], js.data.Samples[over:]...)
	}
	js.mutex.Unlock()

	return js.saveToFile()
}

// RecentStats returns up to limit of the newest samples of a session,
// oldest first
func (js *JSONStore) RecentStats(sessionID string, limit int) ([]models.StatsSample, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	var out []models.StatsSample
	for i := len(js.data.Samples) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s := js.data.Samples[i]; s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Session returns a recorded session summary
func (js *JSONStore) Session(sessionID string) (*models.SessionSummary, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	s, ok := js.data.Sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	c := *s
	return &c, nil
}

// Close flushes the file
func (js *JSONStore) Close() error {
	return js.saveToFile()
}
