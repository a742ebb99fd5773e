package catalog

import (
	"fmt"
	"net/http"

	"github.com/asterpay/x402/types"
)

// Endpoint describes a priced operation.
type Endpoint struct {
	Operation   types.Operation   `json:"-"`
	Path        string            `json:"endpoint"`
	Method      string            `json:"method"`
	Price       string            `json:"price"`
	Currency    types.Currency    `json:"currency"`
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
}

// Pricing is the catalog snapshot served to clients.
type Pricing struct {
	APIs            []Endpoint     `json:"apis"`
	PaymentNetwork  string         `json:"paymentNetwork"`
	PaymentCurrency types.Currency `json:"paymentCurrency"`
	PaymentAddress  string         `json:"paymentAddress"`
	Protocol        string         `json:"protocol"`
}

type definition struct {
	path        string
	description string
	params      map[string]string
}

var definitions = map[types.Operation]definition{
	types.OperationSummarize: {
		path:        "/api/ai/summarize",
		description: "Summarize text with AI",
		params:      map[string]string{"text": "string (required)"},
	},
	types.OperationTranslate: {
		path:        "/api/ai/translate",
		description: "Translate text to any language",
		params:      map[string]string{"text": "string (required)", "targetLanguage": "string (required)"},
	},
	types.OperationAnalyze: {
		path:        "/api/ai/analyze",
		description: "Analyze text (sentiment, entities, topics)",
		params:      map[string]string{"text": "string (required)", "analysisType": "string (optional)"},
	},
	types.OperationSearch: {
		path:        "/api/web/search",
		description: "Web search with AI summary",
		params:      map[string]string{"query": "string (required)"},
	},
}

// Service is the static catalog of priced operations.
type Service struct {
	prices    *PriceTable
	target    types.PaymentTarget
	endpoints []Endpoint
}

// NewService builds the catalog. Every priced operation must be a known one.
func NewService(prices *PriceTable, target types.PaymentTarget) (*Service, error) {
	endpoints := make([]Endpoint, 0, len(definitions))
	for _, op := range []types.Operation{
		types.OperationSummarize,
		types.OperationTranslate,
		types.OperationAnalyze,
		types.OperationSearch,
	} {
		if _, ok := prices.Price(op); !ok {
			continue
		}
		def := definitions[op]
		endpoints = append(endpoints, Endpoint{
			Operation:   op,
			Path:        def.path,
			Method:      http.MethodPost,
			Price:       prices.Display(op),
			Currency:    target.Token.Symbol,
			Description: def.description,
			Params:      def.params,
		})
	}

	for _, op := range prices.Operations() {
		if _, ok := definitions[op]; !ok {
			return nil, &types.X402Error{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("price configured for unknown operation %q", op),
			}
		}
	}

	return &Service{prices: prices, target: target, endpoints: endpoints}, nil
}

// Endpoint returns the description of op.
func (s *Service) Endpoint(op types.Operation) (Endpoint, bool) {
	for _, e := range s.endpoints {
		if e.Operation == op {
			return e, true
		}
	}
	return Endpoint{}, false
}

func (s *Service) Pricing() Pricing {
	apis := make([]Endpoint, len(s.endpoints))
	copy(apis, s.endpoints)

	return Pricing{
		APIs:            apis,
		PaymentNetwork:  s.target.DisplayName(),
		PaymentCurrency: s.target.Token.Symbol,
		PaymentAddress:  s.target.Recipient,
		Protocol:        "x402",
	}
}

func (s *Service) Prices() *PriceTable {
	return s.prices
}

func (s *Service) Target() types.PaymentTarget {
	return s.target
}
