package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	ContentPostsTable  = "content_posts"
	ContentAssetsTable = "content_assets"
)

// Post represents a row in the content_posts table.
type Post struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TenantID    uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Body        string     `db:"body" json:"body"`
	Status      string     `db:"status" json:"status"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Asset represents a row in the content_assets table. The blob itself lives in
// the object store at ObjectPath.
type Asset struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TenantID    uuid.UUID `db:"tenant_id" json:"tenant_id"`
	PostID      uuid.UUID `db:"post_id" json:"post_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	ObjectPath  string    `db:"object_path" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

var (
	// ErrPostNotFound indicates a missing post in the caller's tenant.
	ErrPostNotFound = errors.New("post not found")
	// ErrPostConflict indicates a duplicated slug within the tenant.
	ErrPostConflict = errors.New("post conflict")
	// ErrAssetNotFound indicates a missing asset in the caller's tenant.
	ErrAssetNotFound = errors.New("asset not found")
)

var postSortColumns = map[string]string{
	"created_at":   "created_at",
	"published_at": "published_at",
	"title":        "title",
	"status":       "status",
}

// ContentStore exposes persistence helpers for posts and their assets.
type ContentStore struct {
	db *TenantDB
}

// NewContentStore returns a store instance bound to the shared TenantDB.
func NewContentStore(db *TenantDB) *ContentStore {
	if db == nil {
		panic("content store requires tenant db")
	}
	return &ContentStore{db: db}
}

// ListPosts returns one page of the tenant's posts plus the total row count.
func (s *ContentStore) ListPosts(ctx context.Context, tenantID uuid.UUID, params ListParams) ([]Post, int, error) {
	params = params.normalize()

	order, err := orderClause(postSortColumns, params, "ORDER BY created_at DESC")
	if err != nil {
		return nil, 0, err
	}

	where := "tenant_id = $1"
	args := []any{tenantID}
	if term := params.searchTerm(); term != "" {
		args = append(args, "%"+term+"%")
		where += fmt.Sprintf(" AND (title ILIKE $%d OR slug ILIKE $%d)", len(args), len(args))
	}

	var posts []Post
	var total int

	err = s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s", ContentPostsTable, where,
		), args...).Scan(&total); err != nil {
			return fmt.Errorf("count posts: %w", err)
		}

		limit, offset := params.limitOffset()
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, title, slug, body, status, published_at, created_at, updated_at
            FROM %s WHERE %s %s LIMIT %d OFFSET %d
        `, ContentPostsTable, where, order, limit, offset), args...)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			post, err := scanPost(rows)
			if err != nil {
				return err
			}
			posts = append(posts, post)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// GetPost returns a single post scoped to the caller's tenant.
func (s *ContentStore) GetPost(ctx context.Context, tenantID, postID uuid.UUID) (Post, error) {
	var post Post

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, title, slug, body, status, published_at, created_at, updated_at
            FROM %s WHERE tenant_id = $1 AND id = $2
        `, ContentPostsTable), tenantID, postID)

		var scanErr error
		post, scanErr = scanPost(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, err
	}

	return post, nil
}

// CreatePostParams captures the fields required to insert a post.
type CreatePostParams struct {
	Title  string
	Slug   string
	Body   string
	Status string
}

// CreatePost inserts a post scoped to the caller's tenant.
func (s *ContentStore) CreatePost(ctx context.Context, tenantID uuid.UUID, params CreatePostParams) (Post, error) {
	var post Post

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, tenant_id, title, slug, body, status)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, tenant_id, title, slug, body, status, published_at, created_at, updated_at
        `, ContentPostsTable), uuid.New(), tenantID, params.Title, params.Slug, params.Body, params.Status)

		var scanErr error
		post, scanErr = scanPost(row)
		return scanErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Post{}, ErrPostConflict
		}
		return Post{}, err
	}

	return post, nil
}

// UpdatePostParams represents the patchable post fields. Nil means unchanged.
type UpdatePostParams struct {
	Title  *string
	Slug   *string
	Body   *string
	Status *string
	// PublishedAt is set by the service when status transitions to published.
	PublishedAt    *time.Time
	ClearPublished bool
}

// UpdatePost applies the provided fields and returns the updated record.
func (s *ContentStore) UpdatePost(ctx context.Context, tenantID, postID uuid.UUID, params UpdatePostParams) (Post, error) {
	setParts := []string{}
	var args []any

	addSet := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		addSet("title", strings.TrimSpace(*params.Title))
	}
	if params.Slug != nil {
		addSet("slug", *params.Slug)
	}
	if params.Body != nil {
		addSet("body", *params.Body)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.ClearPublished {
		setParts = append(setParts, "published_at = NULL")
	} else if params.PublishedAt != nil {
		addSet("published_at", *params.PublishedAt)
	}

	if len(setParts) == 0 {
		return Post{}, errors.New("no fields to update")
	}

	args = append(args, tenantID, postID)
	query := fmt.Sprintf(`
        UPDATE %s
        SET %s, updated_at = NOW()
        WHERE tenant_id = $%d AND id = $%d
        RETURNING id, tenant_id, title, slug, body, status, published_at, created_at, updated_at
    `, ContentPostsTable, strings.Join(setParts, ", "), len(args)-1, len(args))

	var post Post
	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var scanErr error
		post, scanErr = scanPost(tx.QueryRow(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		if isUniqueViolation(err) {
			return Post{}, ErrPostConflict
		}
		return Post{}, err
	}

	return post, nil
}

// DeletePost removes a post and its asset rows scoped to the caller's tenant.
// Blob cleanup is the service's responsibility.
func (s *ContentStore) DeletePost(ctx context.Context, tenantID, postID uuid.UUID) error {
	return s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE tenant_id = $1 AND post_id = $2", ContentAssetsTable,
		), tenantID, postID); err != nil {
			return fmt.Errorf("delete post assets: %w", err)
		}

		tag, err := tx.Exec(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE tenant_id = $1 AND id = $2", ContentPostsTable,
		), tenantID, postID)
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

// ListAssets returns all asset records for a post in the caller's tenant.
func (s *ContentStore) ListAssets(ctx context.Context, tenantID, postID uuid.UUID) ([]Asset, error) {
	var assets []Asset

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, post_id, file_name, content_type, size_bytes, object_path, created_at
            FROM %s WHERE tenant_id = $1 AND post_id = $2
            ORDER BY created_at DESC
        `, ContentAssetsTable), tenantID, postID)
		if err != nil {
			return fmt.Errorf("list assets: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			asset, err := scanAsset(rows)
			if err != nil {
				return err
			}
			assets = append(assets, asset)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}

// GetAsset returns a single asset record scoped to the caller's tenant.
func (s *ContentStore) GetAsset(ctx context.Context, tenantID, assetID uuid.UUID) (Asset, error) {
	var asset Asset

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            SELECT id, tenant_id, post_id, file_name, content_type, size_bytes, object_path, created_at
            FROM %s WHERE tenant_id = $1 AND id = $2
        `, ContentAssetsTable), tenantID, assetID)

		var scanErr error
		asset, scanErr = scanAsset(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrAssetNotFound
		}
		return Asset{}, err
	}

	return asset, nil
}

// CreateAssetParams captures an uploaded asset's metadata. ObjectPath must
// already carry the tenant prefix assigned by the blob store.
type CreateAssetParams struct {
	PostID      uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	ObjectPath  string
}

// CreateAsset records an uploaded asset for a post in the caller's tenant. The
// post lookup shares the transaction so an asset can never attach to another
// tenant's post.
func (s *ContentStore) CreateAsset(ctx context.Context, tenantID uuid.UUID, params CreateAssetParams) (Asset, error) {
	var asset Asset

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		var postExists bool
		if err := tx.QueryRow(ctx, fmt.Sprintf(
			"SELECT EXISTS (SELECT 1 FROM %s WHERE tenant_id = $1 AND id = $2)", ContentPostsTable,
		), tenantID, params.PostID).Scan(&postExists); err != nil {
			return fmt.Errorf("check post: %w", err)
		}
		if !postExists {
			return ErrPostNotFound
		}

		row := tx.QueryRow(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, tenant_id, post_id, file_name, content_type, size_bytes, object_path)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, tenant_id, post_id, file_name, content_type, size_bytes, object_path, created_at
        `, ContentAssetsTable), uuid.New(), tenantID, params.PostID, params.FileName, params.ContentType, params.SizeBytes, params.ObjectPath)

		var scanErr error
		asset, scanErr = scanAsset(row)
		return scanErr
	})
	if err != nil {
		return Asset{}, err
	}

	return asset, nil
}

// DeleteAsset removes an asset record scoped to the caller's tenant and
// returns it so the service can delete the blob afterwards.
func (s *ContentStore) DeleteAsset(ctx context.Context, tenantID, assetID uuid.UUID) (Asset, error) {
	var asset Asset

	err := s.db.WithTenant(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`
            DELETE FROM %s WHERE tenant_id = $1 AND id = $2
            RETURNING id, tenant_id, post_id, file_name, content_type, size_bytes, object_path, created_at
        `, ContentAssetsTable), tenantID, assetID)

		var scanErr error
		asset, scanErr = scanAsset(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrAssetNotFound
		}
		return Asset{}, err
	}

	return asset, nil
}

func scanPost(row pgx.Row) (Post, error) {
	var post Post
	if err := row.Scan(
		&post.ID,
		&post.TenantID,
		&post.Title,
		&post.Slug,
		&post.Body,
		&post.Status,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return Post{}, err
	}
	return post, nil
}

func scanAsset(row pgx.Row) (Asset, error) {
	var asset Asset
	if err := row.Scan(
		&asset.ID,
		&asset.TenantID,
		&asset.PostID,
		&asset.FileName,
		&asset.ContentType,
		&asset.SizeBytes,
		&asset.ObjectPath,
		&asset.CreatedAt,
	); err != nil {
		return Asset{}, err
	}
	return asset, nil
}
