package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/wastebank/storefront/apperrors"
)

const (
	scopeDatabase  = "https://www.googleapis.com/auth/firebase.database"
	scopeUserEmail = "https://www.googleapis.com/auth/userinfo.email"
)

// NewApp builds the Firebase app shared by the store and the auth
// client. Credentials fall back to Application Default Credentials when
// no file is configured.
func NewApp(ctx context.Context, databaseURL, credentialsFile string) (*firebase.App, error) {
	conf := &firebase.Config{DatabaseURL: databaseURL}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

// FirebaseStore is the production Store backend, a Realtime Database
// client. Reads and writes go through the admin SDK. The SDK has no
// change listener, so Watch streams the database's REST SSE endpoint
// and re-reads the subtree on every put or patch event.
type FirebaseStore struct {
	db          *db.Client
	databaseURL string
	tokens      oauth2.TokenSource
	httpClient  *http.Client
}

func NewFirebaseStore(ctx context.Context, app *firebase.App, databaseURL, credentialsFile string) (*FirebaseStore, error) {
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init database client: %w", err)
	}

	tokens, err := tokenSource(ctx, credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("init token source: %w", err)
	}

	return &FirebaseStore{
		db:          client,
		databaseURL: strings.TrimSuffix(databaseURL, "/"),
		tokens:      tokens,
		httpClient:  &http.Client{},
	}, nil
}

func tokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, err
		}
		creds, err := google.CredentialsFromJSON(ctx, data, scopeDatabase, scopeUserEmail)
		if err != nil {
			return nil, err
		}
		return creds.TokenSource, nil
	}
	return google.DefaultTokenSource(ctx, scopeDatabase, scopeUserEmail)
}

func (s *FirebaseStore) Get(ctx context.Context, path string) (Snapshot, error) {
	var raw json.RawMessage
	if err := s.db.NewRef(path).Get(ctx, &raw); err != nil {
		return Snapshot{}, apperrors.ErrTransport.With(err)
	}
	return NewSnapshot(raw), nil
}

func (s *FirebaseStore) Set(ctx context.Context, path string, v any) error {
	if err := s.db.NewRef(path).Set(ctx, v); err != nil {
		return apperrors.ErrTransport.With(err)
	}
	return nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.db.NewRef(path).Delete(ctx); err != nil {
		return apperrors.ErrTransport.With(err)
	}
	return nil
}

// PushKey generates the key client side, exactly as the mobile SDKs do.
// Keys embed the allocation time, so they order chronologically.
func (s *FirebaseStore) PushKey(_ context.Context, _ string) (string, error) {
	return newPushID(time.Now()), nil
}

func (s *FirebaseStore) Watch(ctx context.Context, path string) (Watcher, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	tok, err := s.tokens.Token()
	if err != nil {
		cancel()
		return nil, apperrors.ErrTransport.With(err)
	}

	url := s.databaseURL + "/" + path + ".json"
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, apperrors.ErrTransport.With(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, apperrors.ErrTransport.With(fmt.Errorf("stream request: %s", resp.Status))
	}

	w := &sseWatcher{cancel: cancel, events: make(chan Event, 1)}
	go w.run(streamCtx, s, path, resp.Body)
	return w, nil
}

type sseWatcher struct {
	cancel context.CancelFunc
	events chan Event
	once   sync.Once
}

func (w *sseWatcher) Events() <-chan Event { return w.events }

// Close tears down the stream. Idempotent.
func (w *sseWatcher) Close() error {
	w.once.Do(w.cancel)
	return nil
}

func (w *sseWatcher) run(ctx context.Context, s *FirebaseStore, path string, body io.ReadCloser) {
	defer close(w.events)
	defer body.Close()
	defer w.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			switch event {
			case "put", "patch":
				// The event payload may be a partial patch; a fresh
				// read keeps snapshots whole and consistent.
				snap, err := s.Get(ctx, path)
				if err != nil {
					w.send(Event{Err: err})
					return
				}
				w.send(Event{Snapshot: snap})
			case "cancel", "auth_revoked":
				w.send(Event{Err: apperrors.ErrTransport.With(fmt.Errorf("stream closed by server: %s", event))})
				return
			}
			// keep-alive events are ignored
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		w.send(Event{Err: apperrors.ErrTransport.With(err)})
	}
}

// send keeps only the latest event when the consumer lags.
func (w *sseWatcher) send(ev Event) {
	for {
		select {
		case w.events <- ev:
			return
		default:
			select {
			case <-w.events:
			default:
			}
		}
	}
}
