// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's set is reconciled
idempotently; problems are aggregated so startup can fail fast with the
full picture.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func desired() []collectionIndexes {
	return []collectionIndexes{
		{"users", []mongo.IndexModel{
			uniq("uniq_users_email", bson.D{{Key: "email", Value: 1}}),
		}},
		{"courses", []mongo.IndexModel{
			uniq("uniq_courses_code_ci", bson.D{{Key: "code_ci", Value: 1}}),
		}},
		{"study_groups", []mongo.IndexModel{
			// Listing sorts by creation; the filters below narrow it.
			idx("idx_groups_created", bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
			idx("idx_groups_course_created", bson.D{{Key: "course_id", Value: 1}, {Key: "created_at", Value: 1}}),
			idx("idx_groups_members", bson.D{{Key: "member_ids", Value: 1}}),
			idx("idx_groups_skill_level", bson.D{{Key: "skill_level", Value: 1}}),
			idx("idx_groups_creator", bson.D{{Key: "creator_id", Value: 1}}),
		}},
		{"study_sessions", []mongo.IndexModel{
			idx("idx_sessions_group_date", bson.D{
				{Key: "group_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "created_at", Value: 1},
				{Key: "_id", Value: 1},
			}),
		}},
		{"audit_events", []mongo.IndexModel{
			idx("idx_audit_timestamp", bson.D{{Key: "timestamp", Value: -1}}),
			idx("idx_audit_user_timestamp", bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_audit_group_timestamp", bson.D{{Key: "group_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_audit_category_type", bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			}),
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(ix.Key)] = ix
	}
	return out, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing collection lists as an error on some servers; create from scratch.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range want {
		name := *m.Options.Name
		unique := boolVal(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
		}

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && boolVal(ex.Unique) == unique {
				zap.L().Debug("reusing existing index", fields...)
				continue
			}
			// Same keys under another name or with other options: replace it.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed", append(fields, zap.String("existing", ex.Name), zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop %s failed: %v", coll.Name(), name, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.String("took", time.Since(start).String()))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
