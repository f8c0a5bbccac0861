package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/domain/interfaces"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/repository/memory"
	"github.com/secmon-lab/casewright/pkg/service/chunker"
	"github.com/secmon-lab/casewright/pkg/usecase"
)

// keywordEmbedder counts vocabulary hits, one dimension per word
type keywordEmbedder struct{}

var vocabulary = []string{"discount", "save15", "checkout", "shipping", "login", "password", "refund"}

func (keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(vocabulary))
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,:;!?()\"'")
			for j, v := range vocabulary {
				if word == v {
					vec[j]++
				}
			}
		}
		out[i] = vec
	}
	return out, nil
}

// scriptedGenerator replays canned responses in order and records every request
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []model.GenerationRequest
}

func (g *scriptedGenerator) Invoke(ctx context.Context, req model.GenerationRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := len(g.requests)
	g.requests = append(g.requests, req)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// countingIndexer wraps an indexer and counts builds
type countingIndexer struct {
	interfaces.Indexer
	builds int
}

func (c *countingIndexer) Build(ctx context.Context, chunks []model.Chunk) (interfaces.Index, error) {
	c.builds++
	return c.Indexer.Build(ctx, chunks)
}

func newIndexer(t *testing.T) *countingIndexer {
	t.Helper()
	indexer, err := memory.NewIndexer(keywordEmbedder{})
	gt.NoError(t, err).Required()
	return &countingIndexer{Indexer: indexer}
}

func newUseCases(t *testing.T, indexer interfaces.Indexer, gen interfaces.Generator, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	uc, err := usecase.New(indexer, gen, opts...)
	gt.NoError(t, err).Required()
	return uc
}

func smallChunker(t *testing.T) *chunker.Chunker {
	t.Helper()
	c, err := chunker.New(chunker.WithChunkSize(200), chunker.WithOverlap(40))
	gt.NoError(t, err).Required()
	return c
}

const promoDoc = `Promotions

The discount code SAVE15 gives 15% off the order subtotal at checkout.
Only one discount code can be applied per order. Expired codes show an error.`

const shippingDoc = `Shipping

Orders above $50 qualify for free shipping. Express shipping costs $10.`

const checkoutHTML = `<form id="checkout">
  <input id="discount-code" name="discount" />
  <button id="apply-discount">Apply</button>
  <span id="total">$100.00</span>
</form>`

const save15Response = "```json\n" + `{
  "test_cases": [
    {
      "Test_ID": "TC-001",
      "Feature": "Discount Code",
      "Test_Scenario": "Enter SAVE15 in the discount field and apply it",
      "Expected_Result": "Total shows 15% off",
      "Triggering_Rule": "SAVE15 gives 15% off the order subtotal",
      "Grounded_In": "promo.md"
    },
    {
      "Test_ID": "TC-002",
      "Feature": "Discount Code",
      "Test_Scenario": "Apply SAVE15 twice",
      "Expected_Result": "Second application is rejected",
      "Triggering_Rule": "Only one discount code per order",
      "Grounded_In": "promo.md"
    },
  ]
}` + "\n```"

const save15Script = "Here's the script:\n```python\nimport os\nfrom selenium import webdriver\n\ndriver = webdriver.Chrome()\n```\nLet me know if you need changes."

func documents() []model.Document {
	return []model.Document{
		{Name: "promo.md", Content: []byte(promoDoc)},
		{Name: "shipping.md", Content: []byte(shippingDoc)},
	}
}

func validTestCase() model.TestCase {
	return model.TestCase{
		TestID:         "TC-001",
		Feature:        "Discount Code",
		TestScenario:   "Enter SAVE15 in the discount field and apply it",
		ExpectedResult: "Total shows 15% off",
		TriggeringRule: "SAVE15 gives 15% off the order subtotal",
		GroundedIn:     "promo.md",
	}
}
