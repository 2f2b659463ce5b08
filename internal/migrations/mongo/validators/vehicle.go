package validators

import "go.mongodb.org/mongo-driver/bson"

var VehicleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"carrier_id",
			"name",
			"brand",
			"model",
			"year",
			"seats",
			"amenities",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"carrier_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"brand": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"model": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"year": bson.M{
				"bsonType": "int",
				"minimum":  1950,
				"maximum":  2100,
			},

			"seats": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  200,
			},

			"photo": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"amenities": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"luggage":          bson.M{"bsonType": "bool"},
					"wifi":             bson.M{"bsonType": "bool"},
					"tv":               bson.M{"bsonType": "bool"},
					"air_conditioning": bson.M{"bsonType": "bool"},
					"toilet":           bson.M{"bsonType": "bool"},
				},
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
				"maximum":  5,
			},

			"rating_count": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
