/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/flowphys/frsolve/FR2D"
	"github.com/flowphys/frsolve/InputParameters"
	"github.com/flowphys/frsolve/server"
)

type solveModel struct {
	ICFile      string
	Partitions  int
	Profile     bool
	MonitorAddr string
	RestartFile string
	SaveFile    string
}

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the two dimensional solver from a YAML input file",
	Long:  `Run the two dimensional solver from a YAML input file`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			sm  = &solveModel{}
		)
		if sm.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		sm.Partitions, _ = cmd.Flags().GetInt("partitions")
		sm.Profile, _ = cmd.Flags().GetBool("profile")
		sm.MonitorAddr, _ = cmd.Flags().GetString("monitor")
		sm.RestartFile, _ = cmd.Flags().GetString("restart")
		sm.SaveFile, _ = cmd.Flags().GetString("save")
		ip := processSolveInput(sm)
		RunSolve(sm, ip)
	},
}

func processSolveInput(sm *solveModel) (ip *InputParameters.InputParameters2D) {
	var (
		err error
	)
	if len(sm.ICFile) == 0 {
		fmt.Printf("error: must supply an input parameters file (-I, --inputConditionsFile)\n")
		exampleFile := `
########################################
Title: "Test Case"
CFL: 1.
FluxType: lax
PolynomialOrder: 2
TimeScheme: 4
FinalTime: 4
Nx: 20
Ny: 20
NPartitions: 4
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = os.ReadFile(sm.ICFile); err != nil {
		panic(err)
	}
	ip = InputParameters.NewDefaults()
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if sm.Partitions > 0 {
		ip.NPartitions = sm.Partitions
	}
	if len(sm.MonitorAddr) != 0 {
		ip.MonitorAddr = sm.MonitorAddr
	}
	return
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- CFL\n\t- PolynomialOrder")
	solveCmd.Flags().IntP("partitions", "n", 0, "number of mesh partitions, overrides the input file")
	solveCmd.Flags().BoolP("profile", "p", false, "write a CPU profile of the run")
	solveCmd.Flags().StringP("monitor", "m", "", "serve the live state over websockets at this address, eg. :8080")
	solveCmd.Flags().StringP("restart", "r", "", "restart snapshot to load before solving")
	solveCmd.Flags().StringP("save", "s", "", "write a restart snapshot here when done")
}

func RunSolve(sm *solveModel, ip *InputParameters.InputParameters2D) {
	if sm.Profile {
		defer profile.Start().Stop()
	}
	c, err := FR2D.NewSolver(ip)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if len(sm.RestartFile) != 0 {
		if err = c.ReadRestart(sm.RestartFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	}
	if len(ip.MonitorAddr) != 0 {
		mon := server.NewMonitor(ip.MonitorAddr)
		mon.Start()
		c.OnUpdate = mon.Publish
	}
	c.Solve()
	if len(sm.SaveFile) != 0 {
		if err = c.WriteRestart(sm.SaveFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	}
}
