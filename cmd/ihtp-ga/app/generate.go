package app

import (
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/pkg/api/v1alpha1"
	"github.com/ihtc/ihtp-ga/pkg/benchmarks"
	"github.com/ihtc/ihtp-ga/pkg/ihtp"
)

func newGenerateCommand() *cobra.Command {
	cfg := benchmarks.DefaultConfig()
	var output string
	var tiny bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in *v1alpha1.Instance
			if tiny {
				in = benchmarks.Tiny()
			} else {
				in = benchmarks.Generate(cfg)
			}
			if err := ihtp.WriteInstance(output, in); err != nil {
				return err
			}
			klog.FromContext(cmd.Context()).Info("Instance written", "path", output, "patients", len(in.Patients), "days", in.Days)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&output, "output", "o", "instance.json", "instance file to write")
	fs.BoolVar(&tiny, "tiny", false, "write the two patient smoke test instance")
	fs.IntVar(&cfg.Days, "days", cfg.Days, "planning horizon")
	fs.IntVar(&cfg.Rooms, "rooms", cfg.Rooms, "number of rooms")
	fs.IntVar(&cfg.RoomCapacity, "room-capacity", cfg.RoomCapacity, "beds per room")
	fs.IntVar(&cfg.Theaters, "theaters", cfg.Theaters, "number of operating theaters")
	fs.IntVar(&cfg.Surgeons, "surgeons", cfg.Surgeons, "number of surgeons")
	fs.IntVar(&cfg.Nurses, "nurses", cfg.Nurses, "number of nurses")
	fs.IntVar(&cfg.Patients, "patients", cfg.Patients, "number of patients")
	fs.IntVar(&cfg.Occupants, "occupants", cfg.Occupants, "number of occupants present on day 0")
	fs.Float64Var(&cfg.MandatoryFraction, "mandatory-fraction", cfg.MandatoryFraction, "share of mandatory patients")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}
