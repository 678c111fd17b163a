package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator is the $jsonSchema applied to the Bookings collection.
// The status enums here are the only store-level guard on the lifecycle
// fields; everything finer-grained is enforced in the services.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "email", "phone", "location", "service_type", "status", "engineer_status"},
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"email": bson.M{
				"bsonType": "string",
				"pattern":  `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
			},
			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 7,
				"maxLength": 20,
			},
			"location": bson.M{
				"bsonType": "string",
			},
			"service_type": bson.M{
				"bsonType": "string",
			},
			"status": bson.M{
				"enum": []string{"Unassigned", "Assigned", "Survey Done", "Pending", "Confirmed", "Completed", "Cancelled"},
			},
			"engineer_status": bson.M{
				"enum": []string{"Unassigned", "Pending", "Accepted", "Assigned", "Survey Done", "Completed"},
			},
			"assigned_engineer_id": bson.M{
				"bsonType": "string",
			},
			"coordinates": bson.M{
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
