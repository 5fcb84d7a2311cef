// Package notectx provides a Go client for the notectx clinical note
// search API.
//
//	client := notectx.New("http://localhost:8080", notectx.WithAPIKey("secret"))
//
//	_, err := client.IngestDocuments(ctx, []notectx.Document{
//	    {Text: "Patient presents with type 2 diabetes.", Metadata: map[string]any{"specialty": "endocrinology"}},
//	})
//
//	resp, err := client.Search(ctx, notectx.SearchRequest{
//	    Query:    "diabetes management",
//	    Keywords: "metformin",
//	    Limit:    5,
//	})
package notectx
