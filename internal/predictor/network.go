package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"PriceForecaster/internal/model"
)

// Activations supported by Network.
const (
	ActivationTanh   = "tanh"
	ActivationReLU   = "relu"
	ActivationLinear = "linear"
)

// Network is a pretrained single-hidden-layer dense network over one window of scaled prices.
type Network struct {
	Ticker        string      `json:"ticker,omitempty"`
	SeqLength     int         `json:"seq_length"`
	HiddenWeights [][]float64 `json:"hidden_weights"` // [hidden][seq_length]
	HiddenBiases  []float64   `json:"hidden_biases"`
	OutputWeights []float64   `json:"output_weights"`
	OutputBias    float64     `json:"output_bias"`
	Activation    string      `json:"activation"`
}

// DecodeNetwork parses and validates a JSON network artifact.
func DecodeNetwork(data []byte) (*Network, error) {
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Validate checks that all layer dimensions agree.
func (n *Network) Validate() error {
	if n.SeqLength <= 0 {
		return fmt.Errorf("network seq_length must be positive, got %d", n.SeqLength)
	}
	hidden := len(n.HiddenWeights)
	if hidden == 0 {
		return fmt.Errorf("network has no hidden units")
	}
	if len(n.HiddenBiases) != hidden || len(n.OutputWeights) != hidden {
		return fmt.Errorf("network layer sizes disagree: %d weights, %d biases, %d outputs",
			hidden, len(n.HiddenBiases), len(n.OutputWeights))
	}
	for i, row := range n.HiddenWeights {
		if len(row) != n.SeqLength {
			return fmt.Errorf("hidden unit %d has %d weights, want %d", i, len(row), n.SeqLength)
		}
	}
	switch n.Activation {
	case "", ActivationTanh, ActivationReLU, ActivationLinear:
	default:
		return fmt.Errorf("unknown activation %q", n.Activation)
	}
	return nil
}

// Predict runs the forward pass for every sample in the batch.
func (n *Network) Predict(ctx context.Context, batch [][][]float64) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float64, len(batch))
	for b, sample := range batch {
		if len(sample) != n.SeqLength {
			return nil, fmt.Errorf("sample %d has %d steps, network expects %d: %w", b, len(sample), n.SeqLength, model.ErrShapeMismatch)
		}
		y := n.OutputBias
		for h, weights := range n.HiddenWeights {
			z := n.HiddenBiases[h]
			for s, step := range sample {
				if len(step) != 1 {
					return nil, fmt.Errorf("sample %d step %d has %d features, want 1: %w", b, s, len(step), model.ErrShapeMismatch)
				}
				z += weights[s] * step[0]
			}
			y += n.OutputWeights[h] * n.activate(z)
		}
		out[b] = []float64{y}
	}
	return out, nil
}

func (n *Network) activate(z float64) float64 {
	switch n.Activation {
	case ActivationReLU:
		return math.Max(0, z)
	case ActivationLinear:
		return z
	default:
		return math.Tanh(z)
	}
}
