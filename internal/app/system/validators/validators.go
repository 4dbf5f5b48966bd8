// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/samber/lo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections the app uses and attaches JSON-Schema
// validators where the server supports collMod. Unsupported servers are
// logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("courses", coursesSchema())
	ensure("study_groups", studyGroupsSchema())
	ensure("study_sessions", studySessionsSchema())

	// Append-only; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash"},
			"properties": bson.M{
				"name":          nonBlank,
				"email":         nonBlank,
				"password_hash": nonBlank,
			},
		},
	}
}

func coursesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "code", "code_ci"},
			"properties": bson.M{
				"name":        nonBlank,
				"code":        nonBlank,
				"code_ci":     nonBlank,
				"description": bson.M{"bsonType": "string"},
			},
		},
	}
}

func studyGroupsSchema() bson.M {
	levels := lo.Map(models.SkillLevels, func(s string, _ int) any { return s })
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "creator_id", "course_id", "member_ids"},
			"properties": bson.M{
				"name":        nonBlank,
				"creator_id":  bson.M{"bsonType": "objectId"},
				"course_id":   bson.M{"bsonType": "objectId"},
				"language":    bson.M{"bsonType": "string"},
				"skill_level": bson.M{"enum": append(bson.A{""}, levels...)},
				"member_ids": bson.M{
					"bsonType":    "array",
					"minItems":    1,
					"uniqueItems": true,
					"items":       bson.M{"bsonType": "objectId"},
				},
			},
		},
	}
}

func studySessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "creator_id", "date", "topic", "location"},
			"properties": bson.M{
				"group_id":         bson.M{"bsonType": "objectId"},
				"creator_id":       bson.M{"bsonType": "objectId"},
				"date":             bson.M{"bsonType": "date"},
				"topic":            nonBlank,
				"location":         nonBlank,
				"start_time":       bson.M{"bsonType": "string", "maxLength": 20},
				"duration_minutes": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			},
		},
	}
}
