package validators

import "go.mongodb.org/mongo-driver/bson"

var EngineerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"first_name", "last_name", "email", "status"},
		"properties": bson.M{
			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},
			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},
			"email": bson.M{
				"bsonType": "string",
				"pattern":  `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
			},
			"status": bson.M{
				"enum": []string{"Pending", "Active", "Inactive", "Rejected"},
			},
			"is_online": bson.M{
				"bsonType": "bool",
			},
			"accepted_count": bson.M{
				"bsonType": []string{"int", "long"},
			},
			"rejected_count": bson.M{
				"bsonType": []string{"int", "long"},
			},
			"location": bson.M{
				"bsonType": "object",
				"required": []string{"type", "coordinates"},
				"properties": bson.M{
					"type": bson.M{
						"enum": []string{"Point"},
					},
					"coordinates": bson.M{
						"bsonType": "array",
						"minItems": 2,
						"maxItems": 2,
						"items": bson.M{
							"bsonType": "double",
						},
					},
				},
			},
		},
	},
}
