package mongodb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/pkg/idx"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type accountDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"fullName"`
	Password     string    `bson:"password"`
	Avatar       string    `bson:"avatar"`
	CoverImage   string    `bson:"coverImage"`
	RefreshToken string    `bson:"refreshToken"`
	WatchHistory []string  `bson:"watchHistory"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toDoc(a domain.Account) accountDoc {
	return accountDoc{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		FullName:     a.FullName,
		Password:     a.PasswordHash,
		Avatar:       a.AvatarURL,
		CoverImage:   a.CoverImageURL,
		RefreshToken: a.RefreshTokenHash,
		WatchHistory: a.WatchHistory,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() domain.Account {
	history := d.WatchHistory
	if history == nil {
		history = []string{}
	}
	return domain.Account{
		ID:               d.ID,
		Username:         d.Username,
		Email:            d.Email,
		FullName:         d.FullName,
		PasswordHash:     d.Password,
		AvatarURL:        d.Avatar,
		CoverImageURL:    d.CoverImage,
		RefreshTokenHash: d.RefreshToken,
		WatchHistory:     history,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type accountsRepo struct {
	coll *mongo.Collection
}

var _ store.Accounts = (*accountsRepo)(nil)

// BSON dates carry milliseconds.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if a.ID == "" {
		a.ID = idx.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	if a.WatchHistory == nil {
		a.WatchHistory = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, toDoc(a)); err != nil {
		return domain.Account{}, mapWriteErr(err)
	}
	return a, nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *accountsRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (domain.Account, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return domain.Account{}, store.ErrNotFound
	}

	return r.findOne(ctx, bson.M{"$or": or}, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *accountsRepo) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	return r.set(ctx, id, bson.M{"fullName": fullName, "email": email})
}

func (r *accountsRepo) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.set(ctx, id, bson.M{"avatar": url})
}

func (r *accountsRepo) UpdateCoverImage(ctx context.Context, id, url string) error {
	return r.set(ctx, id, bson.M{"coverImage": url})
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, bson.M{"password": hash})
}

func (r *accountsRepo) SetRefreshToken(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, bson.M{"refreshToken": hash})
}

func (r *accountsRepo) SwapRefreshToken(ctx context.Context, id, expected, next string) error {
	if expected == "" {
		return store.ErrStale
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": expected},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrStale
	}
	return nil
}

func (r *accountsRepo) set(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = now()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) findOne(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOneOptions]) (domain.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}
