package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/0x4d31/llmtester/pkg/llm"
	"github.com/bluele/gcache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrCacheMiss     = errors.New("not found in cache")
	ErrCacheExpired  = errors.New("cached record is expired")
	ErrCacheDisabled = errors.New("cache is disabled")
)

// Cache stores answers in sqlite with a small in-memory LFU cache in front.
//
// Duration is in hours: 0 disables caching, -1 keeps records forever.
type Cache struct {
	db       *sql.DB
	memory   gcache.Cache
	duration int
	mutex    sync.Mutex
}

type entry struct {
	answer   string
	cachedAt time.Time
}

// New opens (or creates) the cache database. No database is opened when
// caching is disabled.
func New(path string, duration int, memorySize int) (*Cache, error) {
	c := &Cache{duration: duration}
	if duration == 0 {
		return c, nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cachedAt DATETIME,
		key TEXT UNIQUE,
		response TEXT
	)
`)
	if err != nil {
		db.Close()
		return nil, err
	}

	if memorySize <= 0 {
		memorySize = 1
	}
	c.db = db
	c.memory = gcache.New(memorySize).LFU().Build()
	return c, nil
}

// Enabled reports whether answers are cached.
func (c *Cache) Enabled() bool {
	return c.duration != 0
}

// Get returns the cached answer for key.
func (c *Cache) Get(key string) (string, error) {
	if !c.Enabled() {
		return "", ErrCacheDisabled
	}

	if val, err := c.memory.Get(key); err == nil {
		if e, ok := val.(entry); ok {
			if c.expired(e.cachedAt) {
				return "", ErrCacheExpired
			}
			return e.answer, nil
		}
	}

	var response string
	var cachedAt time.Time
	row := c.db.QueryRow("SELECT cachedAt, response FROM cache WHERE key = ? ORDER BY cachedAt DESC LIMIT 1", key)
	err := row.Scan(&cachedAt, &response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCacheMiss
	} else if err != nil {
		return "", err
	}

	if c.expired(cachedAt) {
		return "", ErrCacheExpired
	}

	_ = c.memory.Set(key, entry{answer: response, cachedAt: cachedAt})
	return response, nil
}

// Store saves answer under key. It is a no-op when caching is disabled.
func (c *Cache) Store(key, answer string) error {
	if !c.Enabled() {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	currentTime := time.Now()
	_, err := c.db.Exec("INSERT OR REPLACE INTO cache (cachedAt, key, response) VALUES (?, ?, ?)", currentTime, key, answer)
	if err != nil {
		return err
	}

	return c.memory.Set(key, entry{answer: answer, cachedAt: currentTime})
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) expired(cachedAt time.Time) bool {
	if c.duration == -1 {
		return false
	}
	return time.Since(cachedAt) > time.Duration(c.duration)*time.Hour
}

type keyMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type keyRequest struct {
	Provider         string       `json:"provider"`
	ServerURL        string       `json:"serverURL"`
	Model            string       `json:"model"`
	Temperature      *float64     `json:"temperature"`
	MaxTokens        *int         `json:"maxTokens"`
	FrequencyPenalty *float64     `json:"frequencyPenalty"`
	PresencePenalty  *float64     `json:"presencePenalty"`
	Messages         []keyMessage `json:"messages"`
}

// Key derives the cache key of a request: the model settings and the whole
// conversation, so the same question in a different context is a miss.
func Key(cfg llm.Config, messages []llms.MessageContent) string {
	req := keyRequest{
		Provider:         cfg.Provider,
		ServerURL:        cfg.ServerURL,
		Model:            cfg.Model,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
		Messages:         make([]keyMessage, 0, len(messages)),
	}
	for _, m := range messages {
		km := keyMessage{Role: string(m.Role)}
		for _, part := range m.Parts {
			if t, ok := part.(llms.TextContent); ok {
				km.Text += t.Text
			}
		}
		req.Messages = append(req.Messages, km)
	}

	// Marshalling plain strings and numbers cannot fail.
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
