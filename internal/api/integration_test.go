package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/bean-scene/internal/catalog"
	"github.com/Veraticus/bean-scene/internal/grounding"
	"github.com/Veraticus/bean-scene/internal/llm"
	"github.com/Veraticus/bean-scene/internal/model"
	"github.com/Veraticus/bean-scene/internal/recommend"
	"github.com/Veraticus/bean-scene/internal/storage"
	"github.com/Veraticus/bean-scene/internal/testutil"
)

func TestServer_WithStorage(t *testing.T) {
	db := testutil.SetupTestDB(t,
		testutil.NewCoffee("ethiopia-guji").
			Name("Ethiopia Guji").
			Roast(model.RoastLight).
			Notes(model.FlavorFloral, model.FlavorBerry).
			Verified().
			Build(),
		testutil.NewCoffee("house-espresso").
			Name("House Espresso").
			Roast(model.RoastDark).
			Notes(model.FlavorChocolate, model.FlavorNutty).
			Espresso().
			Milk().
			Verified().
			Build(),
		testutil.NewCoffee("unreviewed").Build(),
	)

	loader := catalog.NewLoader(db.Storage, nil)
	chain, err := llm.BuildChain(nil, llm.NewLocalClient(loader), llm.BreakerSettings{}, nil)
	require.NoError(t, err)

	client, err := llm.NewResilient(chain, llm.ResilientConfig{
		Grounding: grounding.NewBuilder(loader, nil),
		Usage:     db.Storage,
	}, nil)
	require.NoError(t, err)

	h := NewServer(Options{
		Recommender:   recommend.NewRecommender(loader, nil),
		Catalog:       loader,
		Chat:          client,
		Usage:         db.Storage,
		ContextTokens: 800,
	}).Routes()

	rec := do(t, h, http.MethodGet, "/api/coffees", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var coffees []model.Coffee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &coffees))
	assert.Len(t, coffees, 2, "unverified rows are hidden")

	rec = do(t, h, http.MethodPost, "/api/recommend",
		`{"drinkStyle":"With milk","brewMethod":"Espresso","roastLevel":5,"flavors":["chocolate"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var match RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, "house-espresso", match.Coffee.ID)

	rec = do(t, h, http.MethodPost, "/api/chat", `{"message":"Which coffee is good for espresso?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.Reply)
	assert.Equal(t, llm.LocalModel, reply.Model)

	// Close flushes the background usage write.
	client.Close()

	rec = do(t, h, http.MethodGet, "/api/usage/subjects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var counts []storage.SubjectCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count)
}
