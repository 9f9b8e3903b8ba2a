package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"mentor",
			"mentee",
			"start_time",
			"end_time",
			"topic",
			"status",
			"booking_version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"mentor": partyRefSchema,
			"mentee": partyRefSchema,

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"topic": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"completed",
					"cancelled_by_mentee",
					"cancelled_by_mentor",
				},
			},

			"meeting_link": bson.M{
				"bsonType": "string",
			},

			"rating": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  5,
			},

			"feedback": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"cancel_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"booking_version": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var partyRefSchema = bson.M{
	"bsonType": "object",
	"required": []string{"id", "name", "email"},
	"properties": bson.M{
		"id":    bson.M{"bsonType": "string"},
		"name":  bson.M{"bsonType": "string"},
		"email": bson.M{"bsonType": "string"},
	},
}
