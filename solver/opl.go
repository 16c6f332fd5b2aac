package solver

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fleet-rl/amod/util"
)

// OPLSolver runs a mathematical-programming engine as a blocking child
// process. The protocol is file based: a data file with the problem in
// bracketed literal syntax is written to the working directory, the
// solver binary is invoked with a model file and the data file, and the
// result file is parsed for flow assignments.
//
// Every environment instance must own a private working directory;
// concurrent instances sharing one directory would clobber each other's
// data files.
type OPLSolver struct {
	// BinDir is the directory holding the oplrun binary
	BinDir string
	// MatchingModel and RebalancingModel are paths to the .mod files
	MatchingModel    string
	RebalancingModel string
	// WorkDir holds the per-instance data/result/log files
	WorkDir string

	seq int
}

var _ FlowOptimizer = &OPLSolver{}

func NewOPLSolver(binDir, matchingModel, rebalancingModel, workDir string) *OPLSolver {
	return &OPLSolver{
		BinDir:           binDir,
		MatchingModel:    matchingModel,
		RebalancingModel: rebalancingModel,
		WorkDir:          workDir,
	}
}

func (s *OPLSolver) MatchingFlows(p *MatchingProblem) (map[Edge]float64, error) {
	demandAttr := make([][]float64, 0, len(p.Demand))
	for _, d := range p.Demand {
		demandAttr = append(demandAttr, []float64{float64(d.Origin), float64(d.Destination), d.Demand, d.Price})
	}
	accTuple := make([][]float64, 0, len(p.Acc))
	for _, a := range p.Acc {
		accTuple = append(accTuple, []float64{float64(a.Region), a.Count})
	}

	sections := []string{
		"demandAttr=" + util.Mat2Str(demandAttr) + ";",
		"accInitTuple=" + util.Mat2Str(accTuple) + ";",
	}
	return s.run(s.MatchingModel, "matching", sections)
}

func (s *OPLSolver) RebalancingFlows(p *RebalancingProblem) (map[Edge]float64, error) {
	edgeAttr := make([][]float64, 0, len(p.Edges))
	for k, e := range p.Edges {
		edgeAttr = append(edgeAttr, []float64{float64(e.I), float64(e.J), float64(p.Times[k])})
	}
	accTuple := make([][]float64, 0, len(p.Acc))
	for _, a := range p.Acc {
		accTuple = append(accTuple, []float64{float64(a.Region), a.Count})
	}
	desiredTuple := make([][]float64, 0, len(p.Desired))
	for _, a := range p.Desired {
		desiredTuple = append(desiredTuple, []float64{float64(a.Region), a.Count})
	}

	sections := []string{
		"edgeAttr=" + util.Mat2Str(edgeAttr) + ";",
		"accInitTuple=" + util.Mat2Str(accTuple) + ";",
		"accRLTuple=" + util.Mat2Str(desiredTuple) + ";",
	}
	return s.run(s.RebalancingModel, "rebalancing", sections)
}

// run writes the data file, invokes the solver and parses the result file
func (s *OPLSolver) run(modelPath, kind string, sections []string) (map[Edge]float64, error) {
	if err := os.MkdirAll(s.WorkDir, 0777); err != nil {
		return nil, fmt.Errorf("solver workdir: %w", err)
	}
	s.seq += 1

	dataFile := filepath.Join(s.WorkDir, fmt.Sprintf("data_%s_%d.dat", kind, s.seq))
	resFile := filepath.Join(s.WorkDir, fmt.Sprintf("res_%s_%d.dat", kind, s.seq))
	outFile := filepath.Join(s.WorkDir, fmt.Sprintf("out_%s_%d.dat", kind, s.seq))

	content := fmt.Sprintf("path=%q;\r\n", resFile)
	for _, sec := range sections {
		content += sec + "\r\n"
	}
	if err := os.WriteFile(dataFile, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write solver data file: %w", err)
	}

	out, err := os.Create(outFile)
	if err != nil {
		return nil, fmt.Errorf("create solver log file: %w", err)
	}
	defer out.Close()

	cmd := exec.Command(filepath.Join(s.BinDir, "oplrun"), modelPath, dataFile)
	cmd.Stdout = out
	cmd.Env = append(os.Environ(), libraryPathEnv()+"="+s.BinDir)
	log.WithField("data", dataFile).Debugf("invoking %s solver", kind)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s solver failed: %w", kind, err)
	}

	flows, err := ParseFlowFile(resFile)
	if err != nil {
		return nil, fmt.Errorf("%s solver output: %w", kind, err)
	}
	return flows, nil
}

func libraryPathEnv() string {
	if runtime.GOOS == "darwin" {
		return "DYLD_LIBRARY_PATH"
	}
	return "LD_LIBRARY_PATH"
}

// ParseFlowFile reads a solver result file and returns the edge flows.
// Lines have the form flow=[(i,j,f)(i,j,f)...]; other keys are ignored.
// A missing file or a malformed line is an error: there is no partial
// result semantics to fall back to.
func ParseFlowFile(path string) (map[Edge]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	flows := make(map[Edge]float64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// the engine prints floats as (i,j,fe); normalize before splitting
		row := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), "e)", ")"))
		row = strings.TrimSuffix(row, ";")
		key, value, found := strings.Cut(row, "=")
		if !found || key != "flow" {
			continue
		}
		value = strings.TrimPrefix(value, "[")
		value = strings.TrimSuffix(value, "]")
		value = strings.TrimPrefix(value, "(")
		value = strings.TrimSuffix(value, ")")
		for _, tuple := range strings.Split(value, ")(") {
			if len(tuple) == 0 {
				continue
			}
			parts := strings.Split(tuple, ",")
			if len(parts) != 3 {
				return nil, fmt.Errorf("malformed flow tuple %q", tuple)
			}
			i, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, fmt.Errorf("malformed flow origin %q", parts[0])
			}
			j, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("malformed flow destination %q", parts[1])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("malformed flow value %q", parts[2])
			}
			flows[Edge{i, j}] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}
	return flows, nil
}
