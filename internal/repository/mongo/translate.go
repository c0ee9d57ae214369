// filepath: internal/repository/mongo/translate.go
package mongo

import (
	"streamdb/internal/models"
	"streamdb/internal/schema"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bsonTypes maps field kinds to $jsonSchema bsonType names.
var bsonTypes = map[schema.Kind]string{
	schema.KindString:    "string",
	schema.KindNumber:    "number",
	schema.KindBool:      "bool",
	schema.KindTimestamp: "date",
	schema.KindReference: "objectId",
}

// JSONSchema renders the collection validator as a $jsonSchema document.
func JSONSchema(c schema.Collection) bson.M {
	properties := bson.M{}
	for _, f := range c.Fields {
		p := bson.M{}
		if f.Kind == schema.KindEnum {
			p["enum"] = f.Enum
		} else {
			p["bsonType"] = bsonTypes[f.Kind]
		}
		if f.MinLength != nil {
			p["minLength"] = *f.MinLength
		}
		if f.Minimum != nil {
			p["minimum"] = *f.Minimum
		}
		if f.Pattern != "" {
			p["pattern"] = f.Pattern
		}
		if f.Description != "" {
			p["description"] = f.Description
		}
		properties[f.Name] = p
	}

	js := bson.M{
		"bsonType":   "object",
		"properties": properties,
	}
	if c.Title != "" {
		js["title"] = c.Title
	}
	if required := c.Required(); len(required) > 0 {
		js["required"] = required
	}
	return bson.M{"$jsonSchema": js}
}

// IndexModel converts an index definition to a driver index model.
func IndexModel(idx schema.Index) mongo.IndexModel {
	keys := bson.D{}
	for _, k := range idx.Keys {
		var v interface{}
		switch k.Order {
		case schema.Desc:
			v = -1
		case schema.Text:
			v = "text"
		default:
			v = 1
		}
		keys = append(keys, bson.E{Key: k.Field, Value: v})
	}

	opts := options.Index().SetName(idx.Name)
	if idx.Unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

func toFilter(f models.Filter) bson.M {
	if f == nil {
		return bson.M{}
	}
	return bson.M(f)
}

// toDocument converts a decoded BSON document, turning BSON dates into time.Time.
func toDocument(m bson.M) models.Document {
	doc := make(models.Document, len(m))
	for k, v := range m {
		doc[k] = fromBSON(v)
	}
	return doc
}

func fromBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.M:
		return map[string]interface{}(toDocument(t))
	case bson.A:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	}
	return v
}

// toBSON prepares a document for insertion.
func toBSON(doc models.Document) bson.M {
	m := make(bson.M, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case time.Time:
			m[k] = primitive.NewDateTimeFromTime(t)
		case models.VideoStatus:
			m[k] = string(t)
		default:
			m[k] = v
		}
	}
	return m
}

// toInt64 reads a numeric field of a command reply.
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}
