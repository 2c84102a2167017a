package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type Options struct {
	Hosts             []string
	Keyspace          string
	Username          string
	Password          string
	Consistency       gocql.Consistency
	Timeout           time.Duration
	ReplicationFactor int
}

// NewSession ensures the keyspace and tables exist and returns a session bound to the keyspace.
func NewSession(ctx context.Context, opts Options, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(opts.Keyspace) {
		return nil, fmt.Errorf("scylla: invalid keyspace name %q", opts.Keyspace)
	}
	if opts.ReplicationFactor < 1 {
		opts.ReplicationFactor = 1
	}

	base, err := cluster(opts, "").CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla: connect: %w", err)
	}
	defer base.Close()
	if err := ensureKeyspace(ctx, base, opts); err != nil {
		return nil, err
	}

	session, err := cluster(opts, opts.Keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla: connect to keyspace %s: %w", opts.Keyspace, err)
	}
	if err := ensureTables(ctx, session, opts.Keyspace); err != nil {
		session.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("scylla connected", "hosts", opts.Hosts, "keyspace", opts.Keyspace)
	}
	return session, nil
}

func cluster(opts Options, keyspace string) *gocql.ClusterConfig {
	c := gocql.NewCluster(opts.Hosts...)
	c.Keyspace = keyspace
	c.Consistency = opts.Consistency
	if opts.Timeout > 0 {
		c.Timeout = opts.Timeout
		c.ConnectTimeout = opts.Timeout
	}
	if opts.Username != "" {
		c.Authenticator = gocql.PasswordAuthenticator{Username: opts.Username, Password: opts.Password}
	}
	return c
}

func ensureKeyspace(ctx context.Context, session *gocql.Session, opts Options) error {
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		opts.Keyspace, opts.ReplicationFactor,
	)
	if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("scylla: create keyspace: %w", err)
	}
	return nil
}

func ensureTables(ctx context.Context, session *gocql.Session, keyspace string) error {
	conversations := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.conversations (
	id text PRIMARY KEY,
	subject text,
	participants set<text>,
	created_at timestamp,
	updated_at timestamp
);`, keyspace)
	if err := session.Query(conversations).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("scylla: create conversations table: %w", err)
	}

	messages := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.messages (
	conversation_id text,
	sent_at timestamp,
	message_id text,
	sender_id text,
	sender_name text,
	sender_type text,
	text text,
	PRIMARY KEY (conversation_id, sent_at, message_id)
) WITH CLUSTERING ORDER BY (sent_at ASC, message_id ASC);`, keyspace)
	if err := session.Query(messages).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("scylla: create messages table: %w", err)
	}
	return nil
}

// ParseConsistency maps a config value to a gocql consistency level.
func ParseConsistency(raw string) (gocql.Consistency, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "quorum":
		return gocql.Quorum, nil
	case "one":
		return gocql.One, nil
	case "local_quorum", "localquorum":
		return gocql.LocalQuorum, nil
	case "all":
		return gocql.All, nil
	default:
		return gocql.Quorum, fmt.Errorf("scylla: unsupported consistency %q", raw)
	}
}
