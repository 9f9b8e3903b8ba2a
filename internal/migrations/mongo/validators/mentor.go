package validators

import "go.mongodb.org/mongo-driver/bson"

var MentorProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user",
			"status",
			"is_accepting_requests",
			"bio",
			"expertise",
			"job_title",
			"timezone",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user": partyRefSchema,

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "approved", "rejected"},
			},

			"is_accepting_requests": bson.M{
				"bsonType": "bool",
			},

			"bio": bson.M{
				"bsonType":  "string",
				"minLength": 50,
				"maxLength": 4000,
			},

			"expertise": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"job_title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"company": bson.M{
				"bsonType":  "string",
				"maxLength": 120,
			},

			"years_of_experience": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  80,
			},

			"timezone": bson.M{
				"bsonType": "string",
			},

			"social_links": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "string",
				},
			},

			"moderation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
