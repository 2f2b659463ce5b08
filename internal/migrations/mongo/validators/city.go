package validators

import "go.mongodb.org/mongo-driver/bson"

var CityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"region",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"region": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
		},
	},
}
