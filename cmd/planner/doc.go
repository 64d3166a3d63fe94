// Command planner runs the workforce planning pipeline over a plan file.
//
//	planner run --input plan.yaml [--config planner.yaml] [--role R]...
//	planner validate --input plan.yaml
//	planner export --input plan.yaml --out plan.xlsx [--chart plan.png]
package main
