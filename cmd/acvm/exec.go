package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/acirlabs/acvm/blackbox"
	"github.com/acirlabs/acvm/brillig"
	"github.com/acirlabs/acvm/field"
)

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run a single bytecode program outside of a circuit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		programPath, _ := cmd.Flags().GetString("program")
		rawInputs, _ := cmd.Flags().GetStringSlice("inputs")
		nbRegisters, _ := cmd.Flags().GetInt("registers")

		f := field.BN254()
		program, err := readProgram(programPath)
		if err != nil {
			return err
		}

		inputs := make([]brillig.Value, len(rawInputs))
		for i, raw := range rawInputs {
			el, err := parseElement(f, raw)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			inputs[i] = brillig.FieldValue(el)
		}

		vm := brillig.New(f, blackbox.DefaultRegistry(), program, inputs, nil)
		switch vm.Run() {
		case brillig.StatusFinished:
		case brillig.StatusTrapped:
			return vm.TrapCause()
		case brillig.StatusAwaitingForeignCall:
			return fmt.Errorf("program requires a foreign call: %s", vm.PendingForeignCall().Function)
		}

		if nbRegisters <= 0 {
			nbRegisters = len(inputs)
		}
		for i := 0; i < nbRegisters; i++ {
			v := vm.Register(brillig.RegisterIndex(i))
			fmt.Printf("r%d = %s\n", i, f.String(v.El))
		}
		return nil
	},
}

func readProgram(path string) (*brillig.Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	table, err := brillig.DeserializeTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	program, ok := table[0]
	if !ok {
		return nil, fmt.Errorf("%s: table has no program with id 0", path)
	}
	return program, nil
}

func parseElement(f field.Field, raw string) (field.Element, error) {
	v, ok := new(big.Int).SetString(raw, 0)
	if !ok {
		return field.Element{}, fmt.Errorf("not a field element: %q", raw)
	}
	return f.FromInterface(v), nil
}

func init() {
	execCmd.Flags().String("program", "", "bytecode file (cbor table, program id 0)")
	execCmd.Flags().StringSlice("inputs", nil, "input field elements loaded into registers 0..n-1")
	execCmd.Flags().Int("registers", 0, "number of registers to print after the run")
	_ = execCmd.MarkFlagRequired("program")
	rootCmd.AddCommand(execCmd)
}
