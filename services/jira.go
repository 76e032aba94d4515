package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jira-commit-helper/models"
)

const (
	// Response body truncation for logging and errors
	maxBodyLogLength   = 500 // Max chars to log in debug
	maxBodyErrorLength = 200 // Max chars to include in error messages

	// Fields requested from the search endpoint
	searchFields = "summary,status,assignee"
)

// Result codes. Every outcome of a client call is normalized to one of these two.
const (
	CodeOK     = http.StatusOK
	CodeFailed = http.StatusBadRequest
)

// Error classes carried by failed results; test with errors.Is
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("issue not found")
	ErrCommentFailed = errors.New("comment failed")
	ErrRemoteRequest = errors.New("remote request failed")
)

// Result is the uniform outcome of a client call: Code is CodeOK with Value set,
// or CodeFailed with a human readable Message and a classified Err.
type Result[T any] struct {
	Code    int
	Value   T
	Message string
	Err     error
}

// OK reports whether the call succeeded
func (r Result[T]) OK() bool {
	return r.Code == CodeOK
}

func succeeded[T any](value T) Result[T] {
	return Result[T]{Code: CodeOK, Value: value}
}

func failed[T any](class error, message string) Result[T] {
	return Result[T]{
		Code:    CodeFailed,
		Message: message,
		Err:     fmt.Errorf("%w: %s", class, message),
	}
}

// Connection is the resolved, immutable view of the Jira configuration.
// It is built once at startup and shared read-only.
type Connection struct {
	host     string
	baseURL  string
	username string
	config   *models.Config
}

// Connect resolves the server address from the configuration. It never touches
// the network, so a connected Connection is configured, not necessarily reachable.
func Connect(config *models.Config) *Connection {
	host, baseURL := resolveServer(config.Jira)
	return &Connection{
		host:     host,
		baseURL:  baseURL,
		username: config.Jira.Username,
		config:   config,
	}
}

// resolveServer accepts either a full URL or a bare hostname completed by protocol, port and base path
func resolveServer(cfg models.JiraConfig) (host string, baseURL string) {
	raw := strings.TrimSpace(cfg.Host)
	if raw == "" {
		return "", ""
	}

	if !strings.Contains(raw, "://") {
		protocol := cfg.Protocol
		if protocol == "" {
			protocol = "https"
		}
		raw = protocol + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", ""
	}

	if u.Port() == "" && cfg.Port > 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(cfg.Port))
	}

	path := strings.TrimRight(u.Path, "/")
	if base := strings.Trim(cfg.Base, "/"); base != "" {
		path += "/" + base
	}
	u.Path = path
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil

	return u.Hostname(), strings.TrimRight(u.String(), "/")
}

// IsConnected reports whether the connection has a usable host
func (c *Connection) IsConnected() bool {
	return c != nil && c.host != ""
}

// Host returns the resolved server hostname
func (c *Connection) Host() string {
	return c.host
}

// BaseURL returns scheme, host, port and base path of the server
func (c *Connection) BaseURL() string {
	return c.baseURL
}

// Username returns the authenticated user
func (c *Connection) Username() string {
	return c.username
}

// DefaultProject returns the configured fallback project, if any
func (c *Connection) DefaultProject() string {
	return c.config.Jira.DefaultProject
}

// JiraClient defines the operations the workflows run against Jira
type JiraClient interface {
	// IsConnected reports whether the client has a resolvable host
	IsConnected() bool

	// Username returns the user the client authenticates as
	Username() string

	// FindIssueAndComment confirms the issue exists, then adds a comment to it
	FindIssueAndComment(ctx context.Context, key string, comment string) Result[*models.JiraComment]

	// SearchIssues runs a JQL query
	SearchIssues(ctx context.Context, jql string) Result[*models.JiraSearchResponse]

	// ListStatuses lists the statuses of a project, falling back to the default project
	ListStatuses(ctx context.Context, project string) Result[[]models.JiraStatus]

	// ListTransitions lists the transitions currently available on an issue
	ListTransitions(ctx context.Context, key string) Result[[]models.JiraTransition]

	// ApplyTransition executes a transition on an issue
	ApplyTransition(ctx context.Context, key string, transitionID string) Result[struct{}]
}

// JiraClientImpl implements the JiraClient interface over the Jira REST API
type JiraClientImpl struct {
	conn   *Connection
	client *http.Client
	logger *zap.Logger
}

// NewJiraClient creates a client for the given connection
func NewJiraClient(conn *Connection, logger *zap.Logger) *JiraClientImpl {
	cfg := conn.config.Jira

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.StrictSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via jira.strict_ssl
	}

	return &JiraClientImpl{
		conn: conn,
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// IsConnected reports whether the underlying connection is usable
func (s *JiraClientImpl) IsConnected() bool {
	return s.conn.IsConnected()
}

// Username returns the configured user
func (s *JiraClientImpl) Username() string {
	return s.conn.Username()
}

func notConnected[T any]() Result[T] {
	return failed[T](ErrConfiguration, "ERROR: Jira host is not configured!")
}

// truncateForLogging truncates response body for debug logging
func truncateForLogging(body []byte, maxLen int) string {
	bodyStr := string(body)
	if len(bodyStr) > maxLen {
		return bodyStr[:maxLen] + fmt.Sprintf("... (truncated, total: %d chars)", len(bodyStr))
	}
	return bodyStr
}

// truncateForError truncates response body for error messages
func truncateForError(body []byte) string {
	return truncateForLogging(body, maxBodyErrorLength)
}

// apiURL joins escaped path segments onto the REST API root
func (s *JiraClientImpl) apiURL(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	apiVersion := s.conn.config.Jira.APIVersion
	if apiVersion == "" {
		apiVersion = "2"
	}
	return fmt.Sprintf("%s/rest/api/%s/%s", s.conn.BaseURL(), apiVersion, strings.Join(escaped, "/"))
}

func (s *JiraClientImpl) authorize(req *http.Request) {
	cfg := s.conn.config.Jira
	switch cfg.AuthType {
	case models.AuthTypeBearer:
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cfg.APIToken))
	default:
		secret := cfg.Password
		if secret == "" {
			secret = cfg.APIToken
		}
		if cfg.Username != "" || secret != "" {
			req.SetBasicAuth(cfg.Username, secret)
		}
	}
}

// doOperation sends one request and returns the body when the status code is accepted.
// There is no retry: a failed call is reported to the caller as is.
func (s *JiraClientImpl) doOperation(
	ctx context.Context,
	operation string,
	url string,
	payload interface{},
	okStatusCodes ...int,
) ([]byte, error) {
	s.logger.Debug("Doing operation", zap.String("operation", operation), zap.String("url", url))

	var bodyReader io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequestWithContext(ctx, operation, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	s.authorize(req)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", operation, err)
	}

	body, readErr := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		s.logger.Error("Failed to close response body", zap.Error(closeErr), zap.String("operation", operation), zap.String("url", url))
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}

	for _, okStatusCode := range okStatusCodes {
		if resp.StatusCode == okStatusCode {
			s.logger.Debug("Operation successful", zap.String("operation", operation), zap.String("url", url), zap.Int("status_code", resp.StatusCode))
			s.logger.Debug("Response body", zap.String("body", truncateForLogging(body, maxBodyLogLength)))
			return body, nil
		}
	}

	return nil, fmt.Errorf("failed to %s %s: status_code=%d, body=%s",
		operation, url, resp.StatusCode, truncateForError(body))
}

func (s *JiraClientImpl) doGet(ctx context.Context, url string) ([]byte, error) {
	return s.doOperation(ctx, http.MethodGet, url, nil, http.StatusOK)
}

func (s *JiraClientImpl) doPost(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	return s.doOperation(ctx, http.MethodPost, url, payload, http.StatusCreated, http.StatusNoContent, http.StatusOK)
}

// FindIssueAndComment looks the issue up and then posts the comment. The two
// calls are not atomic: an issue deleted in between surfaces as ErrCommentFailed.
func (s *JiraClientImpl) FindIssueAndComment(ctx context.Context, key string, comment string) Result[*models.JiraComment] {
	if !s.IsConnected() {
		return notConnected[*models.JiraComment]()
	}

	if _, err := s.doGet(ctx, s.apiURL("issue", key)); err != nil {
		s.logger.Debug("Issue lookup failed", zap.String("issue", key), zap.Error(err))
		return failed[*models.JiraComment](ErrNotFound, fmt.Sprintf("ERROR: Issue %s not found!", key))
	}

	body, err := s.doPost(ctx, s.apiURL("issue", key, "comment"), map[string]string{"body": comment})
	if err != nil {
		s.logger.Warn("Failed to add comment", zap.String("issue", key), zap.Error(err))
		return failed[*models.JiraComment](ErrCommentFailed, fmt.Sprintf("ERROR: comment Issue %s: %v", key, err))
	}

	var created models.JiraComment
	if err := json.Unmarshal(body, &created); err != nil {
		return failed[*models.JiraComment](ErrCommentFailed, fmt.Sprintf("ERROR: comment Issue %s: failed to decode response: %v", key, err))
	}

	s.logger.Info("Comment added", zap.String("issue", key), zap.String("comment_id", created.ID))
	return succeeded(&created)
}

// SearchIssues runs a JQL query and returns the first page of results
func (s *JiraClientImpl) SearchIssues(ctx context.Context, jql string) Result[*models.JiraSearchResponse] {
	if !s.IsConnected() {
		return notConnected[*models.JiraSearchResponse]()
	}

	payload := map[string]interface{}{
		"jql":        jql,
		"startAt":    0,
		"maxResults": s.conn.config.Jira.MaxResults,
		"fields":     strings.Split(searchFields, ","),
	}

	body, err := s.doPost(ctx, s.apiURL("search"), payload)
	if err != nil {
		return failed[*models.JiraSearchResponse](ErrRemoteRequest, err.Error())
	}

	var searchResponse models.JiraSearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		return failed[*models.JiraSearchResponse](ErrRemoteRequest, fmt.Sprintf("failed to decode response: %v", err))
	}

	s.logger.Debug("Search finished", zap.String("jql", jql), zap.Int("total", searchResponse.Total))
	return succeeded(&searchResponse)
}

// ListStatuses lists the statuses of project, or of the default project when project is empty
func (s *JiraClientImpl) ListStatuses(ctx context.Context, project string) Result[[]models.JiraStatus] {
	if !s.IsConnected() {
		return notConnected[[]models.JiraStatus]()
	}

	if project == "" {
		project = s.conn.DefaultProject()
	}
	if project == "" {
		return failed[[]models.JiraStatus](ErrConfiguration, "No project found can not get statuses!")
	}

	body, err := s.doGet(ctx, s.apiURL("project", project, "statuses"))
	if err != nil {
		return failed[[]models.JiraStatus](ErrRemoteRequest, err.Error())
	}

	var payload models.JiraStatusPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return failed[[]models.JiraStatus](ErrRemoteRequest, fmt.Sprintf("failed to decode response: %v", err))
	}

	return succeeded(payload.Statuses())
}

// ListTransitions lists the transitions the server allows from the issue's current status
func (s *JiraClientImpl) ListTransitions(ctx context.Context, key string) Result[[]models.JiraTransition] {
	if !s.IsConnected() {
		return notConnected[[]models.JiraTransition]()
	}

	body, err := s.doGet(ctx, s.apiURL("issue", key, "transitions"))
	if err != nil {
		return failed[[]models.JiraTransition](ErrRemoteRequest, err.Error())
	}

	var transitions models.JiraTransitionsResponse
	if err := json.Unmarshal(body, &transitions); err != nil {
		return failed[[]models.JiraTransition](ErrRemoteRequest, fmt.Sprintf("failed to decode response: %v", err))
	}

	return succeeded(transitions.Transitions)
}

// ApplyTransition executes transitionID on the issue. The id is not checked
// locally; the server decides whether it is legal.
func (s *JiraClientImpl) ApplyTransition(ctx context.Context, key string, transitionID string) Result[struct{}] {
	if !s.IsConnected() {
		return notConnected[struct{}]()
	}

	payload := map[string]interface{}{
		"transition": map[string]string{
			"id": transitionID,
		},
	}

	if _, err := s.doPost(ctx, s.apiURL("issue", key, "transitions"), payload); err != nil {
		return failed[struct{}](ErrRemoteRequest, err.Error())
	}

	s.logger.Info("Issue transitioned", zap.String("issue", key), zap.String("transition_id", transitionID))
	return succeeded(struct{}{})
}
