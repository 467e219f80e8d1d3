package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var Version = "development"

type Error string

func (e Error) Error() string { return string(e) }

// Checks if error is not null, if there is an error it displays a error dialogue box and crashes the program.
func chk(err error) {
	if err != nil {
		ShowErrorDialog(err.Error())
		panic(err)
	}
}

// Extended version of 'chk()'
func chkEX(err error, txt string, crash bool) bool {
	if err != nil {
		ShowErrorDialog(txt + err.Error())
		if crash {
			panic(Error(txt + err.Error()))
		}
		return true
	}
	return false
}

// FileExist returns path if it names an existing file, or "".
func FileExist(path string) string {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return path
	}
	return ""
}

func main() {
	// Make save directories, if they don't exist
	os.Mkdir("save", os.ModeSticky|0755)
	os.Mkdir("save/logs", os.ModeSticky|0755)

	processCommandLine()
	if sys.cmdFlags == nil {
		sys.cmdFlags = make(map[string]string)
	}
	if _, ok := sys.cmdFlags["-stats"]; !ok {
		sys.cmdFlags["-stats"] = "save/stats.json"
	}
	if _, ok := sys.cmdFlags["-config"]; !ok {
		sys.cmdFlags["-config"] = "save/ragdoll.ini"
	}
	if _, ok := sys.cmdFlags["-nolog"]; !ok {
		sys.openLog("save/logs/ragdoll.log")
	}

	cfg, err := loadConfig(sys.cmdFlags["-config"])
	chk(err)
	sys.cfg = *cfg
	if err := sys.cfg.Save(sys.cmdFlags["-config"]); err != nil {
		sys.errLog.Printf("failed to save config: %v", err)
	}

	chkEX(sys.init(), "Ragdoll setup failed.\n", true)
	defer sys.shutdown()

	if p, ok := sys.cmdFlags["-restore"]; ok {
		snap, err := loadSnapshot(p)
		if !chkEX(err, "Snapshot not loaded.\n", false) {
			chkEX(sys.animator.Restore(snap), "Snapshot not restored.\n", false)
		}
	}

	if err := sys.run(); err != nil {
		switch err.(type) {
		case *lua.ApiError:
			ShowErrorDialog(fmt.Sprintf("%s\n\nError saved to save/logs/ragdoll.log", err))
			sys.errLog.Println(err)
		default:
			chk(err)
		}
	}

	if p := sys.cfg.Simulation.Snapshot; p != "" {
		if err := saveSnapshot(p, sys.animator.Capture()); err != nil {
			sys.errLog.Printf("failed to save snapshot: %v", err)
		}
	}
	if err := saveStats(sys.cmdFlags["-stats"], sys.result); err != nil {
		sys.errLog.Printf("failed to save stats: %v", err)
	}

	r := sys.result
	fmt.Printf("%s: %d frames (%d animation, %d physics), root at %.3f %.3f %.3f, moving: %v\n",
		r.Layout, r.Frames, r.AnimationFrames, r.PhysicsFrames, r.Root[0], r.Root[1], r.Root[2], r.Moving)
}

var flagHelp = map[string]string{
	"-config":        "-config <file>          Loads settings from <file> (default save/ragdoll.ini)",
	"-stats":         "-stats <file>           Records run statistics to <file> (default save/stats.json)",
	"-layout":        "-layout <file>          Ragdoll layout: humanoid, or an .ini/.json file",
	"-model":         "-model <file>           Skinned glTF model providing the bone table",
	"-script":        "-script <file>          Lua script; onFrame(frame) runs every frame",
	"-frames":        "-frames <num>           Number of frames to simulate",
	"-switch":        "-switch <num>           Frame at which physics takes over (-1 never)",
	"-snapshot":      "-snapshot <file>        Writes the ragdoll state to <file> at the end",
	"-restore":       "-restore <file>         Restores a snapshot before the first frame",
	"-releasejoints": "-releasejoints          Destroys joints while the animation drives",
	"-nolog":         "-nolog                  Logs to stderr only",
}

// Loops through given comand line arguments and processes them for later use
func processCommandLine() {
	if len(os.Args[1:]) == 0 {
		return
	}
	sys.cmdFlags = make(map[string]string)
	boolFlags := map[string]bool{
		"-releasejoints": true,
		"-nolog":         true,
	}
	key := ""
	r1, _ := regexp.Compile("^-[h%?]$")
	r2, _ := regexp.Compile("^-")
	for _, a := range os.Args[1:] {
		_, err := strconv.ParseFloat(a, 64)
		isNumber := err == nil

		if key != "" && (isNumber || !r2.MatchString(a)) {
			sys.cmdFlags[key] = a
			key = ""
		} else if r2.MatchString(a) {
			if r1.MatchString(a) {
				keys := maps.Keys(flagHelp)
				slices.Sort(keys)
				fmt.Println("ragdollsim command line options\n\n-h -?                   Help")
				for _, k := range keys {
					fmt.Println(flagHelp[k])
				}
				os.Exit(0)
			}
			if _, isBool := boolFlags[a]; isBool {
				sys.cmdFlags[a] = "true"
			} else {
				sys.cmdFlags[a] = ""
				key = a
			}
		}
	}
	// A trailing flag with no value reads as a switch.
	if key != "" {
		sys.cmdFlags[key] = "true"
	}
}
