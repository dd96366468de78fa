package command

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hexsolver/hexsolver/internal/hexboard"
)

// Loop reads named operations one per line from r and writes a
// structured reply to w for each, until r is exhausted or a "quit"
// line is read.
func Loop(s *Session, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if cmd == "quit" {
			return nil
		}

		reply := dispatch(s, cmd, args)
		fmt.Fprintln(w, reply)
	}
	return scanner.Err()
}

// dispatch executes a single named operation and renders its reply
// line. Unknown commands and bad arguments surface as Protocol
// errors, never panics.
func dispatch(s *Session, cmd string, args []string) string {
	switch cmd {
	case "position":
		return doPosition(s, args)
	case "play":
		return doPlay(s, args)
	case "solve-state":
		return doSolveState(s, args)
	case "find-winning":
		return doFindWinning(s, args)
	case "book-expand":
		return doBookExpand(s, args)
	case "book-refresh":
		return formatErr(s.BookRefresh())
	case "book-increase-width":
		return formatErr(s.BookIncreaseWidth())
	case "book-set-value":
		return doBookSetValue(s, args)
	case "book-import-solved":
		return doBookImportSolved(s, args)
	case "set":
		return doSet(s, args)
	default:
		return fmt.Sprintf("error %v: unknown command %q", ErrProtocol, cmd)
	}
}

func formatErr(err error) string {
	if err != nil {
		return fmt.Sprintf("error %v", err)
	}
	return "ok"
}

func doPosition(s *Session, args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf("error %v: position requires a board size", ErrProtocol)
	}
	size, err := strconv.Atoi(args[0])
	if err != nil || size < 1 {
		return fmt.Sprintf("error %v: bad board size %q", ErrProtocol, args[0])
	}
	s.SetPosition(size)
	return "ok"
}

func doPlay(s *Session, args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf("error %v: play requires a move", ErrProtocol)
	}
	m, ok := hexboard.ParseCoord(s.Position().Size, args[0])
	if !ok {
		return fmt.Sprintf("error %v: bad move %q", ErrProtocol, args[0])
	}
	s.Play(m)
	return "ok"
}

func doSolveState(s *Session, args []string) string {
	if len(args) < 1 {
		return fmt.Sprintf("error %v: solve-state requires a color", ErrProtocol)
	}
	if _, ok := hexboard.ParseColor(args[0]); !ok {
		return fmt.Sprintf("error %v: bad color %q", ErrProtocol, args[0])
	}
	res := s.SolveState()
	return formatResult(s, res)
}

func doFindWinning(s *Session, args []string) string {
	if len(args) < 1 {
		return fmt.Sprintf("error %v: find-winning requires a color", ErrProtocol)
	}
	winning, err := s.FindWinning()
	if err != nil {
		return fmt.Sprintf("error %v", err)
	}
	size := s.Position().Size
	toks := make([]string, len(winning))
	for i, m := range winning {
		toks[i] = m.Coord(size)
	}
	return strings.Join(toks, " ")
}

func doBookExpand(s *Session, args []string) string {
	n := 1
	if len(args) >= 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 0 {
			return fmt.Sprintf("error %v: bad iteration count %q", ErrProtocol, args[0])
		}
		n = parsed
	}
	return formatErr(s.BookExpand(n))
}

func doBookSetValue(s *Session, args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf("error %v: book-set-value requires a value", ErrProtocol)
	}
	var value float64
	switch strings.ToUpper(args[0]) {
	case "W":
		value = 1
	case "L":
		value = 0
	default:
		parsed, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Sprintf("error %v: bad value %q", ErrProtocol, args[0])
		}
		value = parsed
	}
	return formatErr(s.BookSetValue(value))
}

func doBookImportSolved(s *Session, args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf("error %v: book-import-solved requires a filename", ErrProtocol)
	}
	f, err := openReadOnly(args[0])
	if err != nil {
		return fmt.Sprintf("error %v: %v", ErrOpenFailure, err)
	}
	defer f.Close()
	n, err := s.BookImportSolved(f)
	if err != nil {
		return fmt.Sprintf("error %v", err)
	}
	return fmt.Sprintf("ok imported %d", n)
}

// doSet applies one of the solver's or book builder's parameter
// knobs: "set <name> <value>".
func doSet(s *Session, args []string) string {
	if len(args) != 2 {
		return fmt.Sprintf("error %v: set requires a name and a value", ErrProtocol)
	}
	name, value := args[0], args[1]
	cfg := s.dfpnCfg
	bookParams := s.bookParams
	switch name {
	case "epsilon":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Sprintf("error %v: bad epsilon %q", ErrProtocol, value)
		}
		cfg.Epsilon = v
	case "use_widening":
		cfg.UseWidening = value == "true" || value == "1"
	case "expand_width":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("error %v: bad expand_width %q", ErrProtocol, value)
		}
		cfg.ExpandWidth = v
	case "expand_threshold":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("error %v: bad expand_threshold %q", ErrProtocol, value)
		}
		cfg.ExpandThreshold = v
	case "use_ice":
		cfg.UseICE = value == "true" || value == "1"
	case "num_threads":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("error %v: bad num_threads %q", ErrProtocol, value)
		}
		cfg.NumThreads = v
	case "timelimit":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Sprintf("error %v: bad timelimit %q", ErrProtocol, value)
		}
		cfg.TimeLimit = time.Duration(v * float64(time.Second))
	case "alpha":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Sprintf("error %v: bad alpha %q", ErrProtocol, value)
		}
		bookParams.Alpha = v
	default:
		return fmt.Sprintf("error %v: unknown parameter %q", ErrProtocol, name)
	}
	s.SetDFPNConfig(cfg)
	s.SetBookParams(bookParams)
	return "ok"
}

func formatResult(s *Session, res Result) string {
	if res.Err != nil {
		return fmt.Sprintf("error %v", res.Err)
	}
	size := s.Position().Size
	parts := []string{res.Outcome.String()}
	if len(res.PV) > 0 {
		toks := make([]string, len(res.PV))
		for i, m := range res.PV {
			toks[i] = m.Coord(size)
		}
		parts = append(parts, "pv", strings.Join(toks, " "))
	}
	parts = append(parts, "work", strconv.FormatUint(res.Work, 10))
	return strings.Join(parts, " ")
}
