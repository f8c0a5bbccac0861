package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/repository/firestore"
	"github.com/secmon-lab/casewright/pkg/repository/memory"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
)

// Index holds CLI flags for the index backend
type Index struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
}

func (x *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-backend",
			Usage:       "Index backend type (memory or firestore)",
			Value:       BackendMemory,
			Category:    "Index",
			Sources:     cli.EnvVars("CASEWRIGHT_INDEX_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Index",
			Sources:     cli.EnvVars("CASEWRIGHT_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Index",
			Sources:     cli.EnvVars("CASEWRIGHT_FIRESTORE_DATABASE_ID"),
			Destination: &x.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Index",
			Sources:     cli.EnvVars("CASEWRIGHT_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &x.collectionPrefix,
		},
	}
}

func (x *Index) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", x.backend),
		slog.String("project_id", x.projectID),
		slog.String("database_id", x.databaseID),
		slog.String("collection_prefix", x.collectionPrefix),
	}
}

func (x *Index) Backend() string {
	return x.backend
}

// Configure returns the indexer for the configured backend and a function
// releasing its resources
func (x *Index) Configure(ctx context.Context, embedder interfaces.Embedder) (interfaces.Indexer, func(), error) {
	switch x.backend {
	case BackendFirestore:
		if x.projectID == "" {
			return nil, nil, goerr.Wrap(ErrMissingCredential, "firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if x.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(x.collectionPrefix))
		}
		indexer, err := firestore.New(ctx, x.projectID, x.databaseID, embedder, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize firestore index")
		}
		logging.Default().Info("Using Firestore index",
			"project_id", x.projectID,
			"database_id", x.databaseID,
		)
		closer := func() {
			if err := indexer.Close(); err != nil {
				logging.Default().Error("failed to close firestore client", "error", err.Error())
			}
		}
		return indexer, closer, nil

	case BackendMemory:
		indexer, err := memory.NewIndexer(embedder)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize memory index")
		}
		logging.Default().Info("Using in-memory index")
		return indexer, func() {}, nil

	default:
		return nil, nil, goerr.Wrap(ErrUnknownBackend, "invalid index backend", goerr.V(BackendKey, x.backend))
	}
}
