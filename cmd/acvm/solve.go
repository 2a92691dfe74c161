package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acirlabs/acvm"
	"github.com/acirlabs/acvm/acir"
	"github.com/acirlabs/acvm/brillig"
	"github.com/acirlabs/acvm/field"
	"github.com/acirlabs/acvm/logger"
	"github.com/acirlabs/acvm/solver"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the witness of a compiled circuit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		circuitPath, _ := cmd.Flags().GetString("circuit")
		witnessPath, _ := cmd.Flags().GetString("witness")
		programsPath, _ := cmd.Flags().GetString("programs")
		outPath, _ := cmd.Flags().GetString("output")

		f := field.BN254()
		log := logger.Logger()

		circuit, err := readCircuit(circuitPath)
		if err != nil {
			return err
		}
		programs := map[uint32]*brillig.Program{}
		if programsPath != "" {
			if programs, err = readPrograms(programsPath); err != nil {
				return err
			}
		}
		initial := solver.NewWitnessMap()
		if witnessPath != "" {
			data, err := os.ReadFile(witnessPath)
			if err != nil {
				return err
			}
			if err := initial.UnmarshalJSONWith(f, data); err != nil {
				return fmt.Errorf("%s: %w", witnessPath, err)
			}
		}

		witness, err := acvm.Solve(f, circuit, programs, initial)
		if err != nil {
			return err
		}
		if err := acvm.Verify(f, circuit, witness); err != nil {
			return err
		}
		log.Info().Int("witnesses", witness.Len()).Msg("solved")

		out, err := witness.MarshalJSONWith(f)
		if err != nil {
			return err
		}
		if outPath == "" {
			fmt.Println(string(out))
			return nil
		}
		return os.WriteFile(outPath, out, 0o644)
	},
}

func readCircuit(path string) (*acir.Circuit, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	circuit, err := acir.DeserializeCircuit(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return circuit, nil
}

func readPrograms(path string) (map[uint32]*brillig.Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	table, err := brillig.DeserializeTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func init() {
	solveCmd.Flags().String("circuit", "", "compiled circuit file (cbor)")
	solveCmd.Flags().String("witness", "", "initial witness file (json)")
	solveCmd.Flags().String("programs", "", "bytecode table file (cbor)")
	solveCmd.Flags().StringP("output", "o", "", "output witness file (json, stdout when empty)")
	_ = solveCmd.MarkFlagRequired("circuit")
	rootCmd.AddCommand(solveCmd)
}
