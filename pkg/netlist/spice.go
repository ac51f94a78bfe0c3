package netlist

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// groundNode is the SPICE name of the reference node. "gnd" is accepted as
// an alias.
const groundNode = "0"

// spiceReader turns SPICE cards into a Deck. Every node name becomes a net
// whose members are the element terminals written on it.
type spiceReader struct {
	deck    *Deck
	netIdx  map[string]int
	models  map[string]map[string]float64
	pending map[int]string // element index -> diode model name
	ended   bool
}

// ParseSPICE reads a SPICE netlist. The first line is the title. Lines
// starting with * are comments, ; starts an inline comment and a leading +
// continues the previous card. Reading stops at .end.
func ParseSPICE(input string) (*Deck, error) {
	r := &spiceReader{
		deck:    &Deck{},
		netIdx:  make(map[string]int),
		models:  make(map[string]map[string]float64),
		pending: make(map[int]string),
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	if scanner.Scan() {
		r.deck.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var (
		card     string
		cardLine int
	)
	lineNo := 1
	for scanner.Scan() && !r.ended {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, "+") {
			if card == "" {
				return nil, fmt.Errorf("line %d: continuation without a card: %w", lineNo, ErrElement)
			}
			card += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := r.card(card, cardLine); err != nil {
			return nil, err
		}
		card, cardLine = line, lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read netlist: %w", err)
	}
	if err := r.card(card, cardLine); err != nil {
		return nil, err
	}

	if err := r.resolveModels(); err != nil {
		return nil, err
	}
	return r.deck, nil
}

func (r *spiceReader) card(card string, lineNo int) error {
	if card == "" || r.ended {
		return nil
	}

	fields := strings.Fields(card)
	var err error
	if strings.HasPrefix(fields[0], ".") {
		err = r.dotCard(fields)
	} else {
		err = r.element(fields)
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", lineNo, err)
	}
	return nil
}

// connect puts the terminal name.role on the net called node.
func (r *spiceReader) connect(name, role, node string) {
	if strings.EqualFold(node, "gnd") {
		node = groundNode
	}
	idx, ok := r.netIdx[node]
	if !ok {
		idx = len(r.deck.Nets)
		r.netIdx[node] = idx
		r.deck.Nets = append(r.deck.Nets, NetSpec{Name: node, Ground: node == groundNode})
	}
	r.deck.Nets[idx].Members = append(r.deck.Nets[idx].Members, name+"."+role)
}

// cardFields is the minimum field count of each element card, name
// included.
var cardFields = map[string]int{"R": 4, "C": 4, "L": 4, "V": 4, "I": 4, "E": 6, "H": 5, "U": 5, "D": 3}

func (r *spiceReader) element(fields []string) error {
	name := fields[0]
	kind := strings.ToUpper(name[:1])

	n, ok := cardFields[kind]
	if !ok {
		return fmt.Errorf("%s: unsupported element: %w", name, ErrElement)
	}
	if len(fields) < n {
		return fmt.Errorf("%s: need %d fields, got %d: %w", name, n, len(fields), ErrElement)
	}

	spec := ElementSpec{Name: name, Type: kind}
	switch kind {
	case "R", "C", "L":
		r.connect(name, "pos", fields[1])
		r.connect(name, "neg", fields[2])
		spec.Value = fields[3]

	case "V", "I":
		r.connect(name, "pos", fields[1])
		r.connect(name, "neg", fields[2])
		if err := sourceSpec(&spec, fields[3:]); err != nil {
			return err
		}

	case "E":
		r.connect(name, "pos", fields[1])
		r.connect(name, "neg", fields[2])
		r.connect(name, "ctrl+", fields[3])
		r.connect(name, "ctrl-", fields[4])
		spec.Value = fields[5]
		if len(fields) > 6 {
			spec.Modes = fields[6]
		}

	case "H":
		r.connect(name, "pos", fields[1])
		r.connect(name, "neg", fields[2])
		spec.Control = fields[3]
		spec.Value = fields[4]
		if len(fields) > 5 {
			spec.Modes = fields[5]
		}

	case "U":
		r.connect(name, "noninv", fields[1])
		r.connect(name, "inv", fields[2])
		r.connect(name, "out", fields[3])
		spec.Value = fields[4]

	case "D":
		r.connect(name, "anode", fields[1])
		r.connect(name, "cathode", fields[2])
		if len(fields) > 3 {
			r.pending[len(r.deck.Elements)] = strings.ToLower(fields[3])
		}
	}

	r.deck.Elements = append(r.deck.Elements, spec)
	return nil
}

// sourceWords splits source parameters, dropping parentheses and commas.
func sourceWords(fields []string) []string {
	s := strings.Join(fields, " ")
	s = strings.NewReplacer("(", " ", ")", " ", ",", " ").Replace(s)
	return strings.Fields(s)
}

// sourceSpec reads "[DC] v [AC mag [phase]]" or a SIN, PULSE or PWL
// description.
func sourceSpec(spec *ElementSpec, fields []string) error {
	words := sourceWords(fields)

	var (
		dc, mag, phase string
		ac             bool
	)
	for i := 0; i < len(words); i++ {
		w := strings.ToUpper(words[i])
		switch w {
		case "DC":
			if i+1 >= len(words) {
				return fmt.Errorf("%s: missing DC value: %w", spec.Name, ErrElement)
			}
			i++
			dc = words[i]

		case "AC":
			if i+1 >= len(words) {
				return fmt.Errorf("%s: missing AC magnitude: %w", spec.Name, ErrElement)
			}
			ac = true
			i++
			mag = words[i]
			if i+1 < len(words) {
				if _, err := ParseValue(words[i+1]); err == nil {
					i++
					phase = words[i]
				}
			}

		case "SIN", "PULSE", "PWL":
			spec.Source = strings.ToLower(w)
			spec.Params = strings.Join(words[i+1:], " ")
			return nil

		default:
			if dc != "" {
				return fmt.Errorf("%s: unexpected %q: %w", spec.Name, words[i], ErrElement)
			}
			dc = words[i]
		}
	}

	if ac {
		spec.Source = "ac"
		spec.Value = mag
		spec.Phase = phase
		spec.Offset = dc
		return nil
	}
	if dc == "" {
		return fmt.Errorf("%s: missing source value: %w", spec.Name, ErrElement)
	}
	spec.Source = "dc"
	spec.Value = dc
	return nil
}

func (r *spiceReader) dotCard(fields []string) error {
	switch strings.ToLower(fields[0]) {
	case ".end":
		r.ended = true
		return nil

	case ".model":
		return r.model(fields[1:])

	case ".op":
		r.deck.Analysis = AnalysisSpec{Type: "op"}
		return nil

	case ".ac":
		return r.acCard(fields[1:])

	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf(".tran needs tstep and tstop: %w", ErrAnalysis)
		}
		spec := &TranSpec{Step: fields[1], Stop: fields[2], Start: "0"}
		if len(fields) > 3 && !strings.EqualFold(fields[3], "uic") {
			spec.Start = fields[3]
		}
		r.deck.Analysis = AnalysisSpec{Type: "tran", Tran: spec}
		return nil

	case ".dc":
		args := fields[1:]
		if len(args) == 0 || len(args)%4 != 0 {
			return fmt.Errorf(".dc needs source, start, stop and increment per sweep: %w", ErrAnalysis)
		}
		var sweeps []DCSpec
		for i := 0; i < len(args); i += 4 {
			sweeps = append(sweeps, DCSpec{Source: args[i], Start: args[i+1], Stop: args[i+2], Increment: args[i+3]})
		}
		r.deck.Analysis = AnalysisSpec{Type: "dc", DC: sweeps}
		return nil
	}

	return fmt.Errorf("unsupported card %s: %w", fields[0], ErrAnalysis)
}

// acCard reads ".ac DEC|OCT|LIN points fstart fstop". For DEC and OCT the
// point count is per decade or octave, as in SPICE.
func (r *spiceReader) acCard(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf(".ac needs sweep type, points, fstart and fstop: %w", ErrAnalysis)
	}

	sweep := strings.ToUpper(args[0])
	points, err := strconv.Atoi(args[1])
	if err != nil || points < 1 {
		return fmt.Errorf(".ac points %q: %w", args[1], ErrAnalysis)
	}
	start, stop, err := parsePair(args[2], args[3])
	if err != nil {
		return fmt.Errorf(".ac range: %w", err)
	}
	if start <= 0 || stop < start {
		return fmt.Errorf(".ac range %g..%g: %w", start, stop, ErrAnalysis)
	}

	total := points
	switch sweep {
	case "DEC":
		total = int(math.Round(float64(points)*math.Log10(stop/start))) + 1
	case "OCT":
		total = int(math.Round(float64(points)*math.Log2(stop/start))) + 1
	case "LIN":
	default:
		return fmt.Errorf(".ac sweep type %q: %w", args[0], ErrAnalysis)
	}

	r.deck.Analysis = AnalysisSpec{
		Type: "ac",
		AC:   &ACSpec{Sweep: sweep, Start: args[2], Stop: args[3], Points: total},
	}
	return nil
}

// model reads ".model name D(is=1e-14 n=1.5)". Only diode models exist.
func (r *spiceReader) model(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(".model needs a name and a type: %w", ErrAnalysis)
	}

	rest := strings.Join(args[1:], " ")
	rest = strings.NewReplacer("(", " ", ")", " ", ",", " ", "=", " = ").Replace(rest)
	words := strings.Fields(rest)
	if len(words) == 0 || !strings.EqualFold(words[0], "D") {
		return fmt.Errorf(".model %s: unsupported type %q: %w", args[0], args[1], ErrAnalysis)
	}

	params := make(map[string]float64)
	words = words[1:]
	for len(words) > 0 {
		if len(words) < 3 || words[1] != "=" {
			return fmt.Errorf(".model %s: expected name=value at %q: %w", args[0], words[0], ErrAnalysis)
		}
		v, err := ParseValue(words[2])
		if err != nil {
			return fmt.Errorf(".model %s: %s: %w", args[0], words[0], err)
		}
		params[strings.ToLower(words[0])] = v
		words = words[3:]
	}

	r.models[strings.ToLower(args[0])] = params
	return nil
}

// resolveModels attaches .model parameters to the diodes naming them. A
// model may be defined after its first use.
func (r *spiceReader) resolveModels() error {
	for idx, name := range r.pending {
		params, ok := r.models[name]
		if !ok {
			return fmt.Errorf("%s: unknown model %s: %w", r.deck.Elements[idx].Name, name, ErrElement)
		}
		r.deck.Elements[idx].Model = params
	}
	return nil
}
