package validators

import "go.mongodb.org/mongo-driver/bson"

// AssignmentValidator deliberately does not require min_price <= max_price;
// the write path stores inverted bands and the search path ignores them.
var AssignmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"vehicle_id",
			"route_id",
			"min_price",
			"max_price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"vehicle_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"route_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"min_price": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"max_price": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
