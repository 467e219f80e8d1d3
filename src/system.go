package main

import (
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ikemen-engine/ikemen-ragdoll/luabind"
	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
	"github.com/ikemen-engine/ikemen-ragdoll/simscene"
)

var sys = System{
	errLog: log.New(NewLogWriter(), "", log.LstdFlags),
}

type System struct {
	cfg      Config
	cmdFlags map[string]string
	errLog   *log.Logger
	logFile  *lumberjack.Logger

	scene     *simscene.Scene
	animator  *ragdoll.Animator
	luaLState *lua.LState

	boneCount int
	frame     int32
	result    RunResult
}

// RunResult is what one simulation run reports to the stats file.
type RunResult struct {
	Layout          string
	Frames          int32
	AnimationFrames int32
	PhysicsFrames   int32
	ModeSwitches    int32
	Moving          bool
	Root            mgl32.Vec3
}

// openLog tees the error log into a rotating file.
func (s *System) openLog(path string) {
	s.logFile = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 3,
	}
	s.errLog.SetOutput(io.MultiWriter(NewLogWriter(), s.logFile))
}

// init builds the scene and the character's ragdoll from the config.
func (s *System) init() error {
	s.scene = simscene.New(mgl32.Vec3{0, s.cfg.Physics.Gravity, 0})
	s.scene.Ground = s.cfg.Physics.Ground
	s.scene.HasGround = true

	layout, err := loadLayout(s.cfg.Ragdoll.Layout)
	if err != nil {
		return err
	}
	table, err := loadBoneTable(s.cfg.Ragdoll.Model, layout)
	if err != nil {
		return err
	}
	s.boneCount = table.BoneCount()
	s.animator = ragdoll.NewAnimator(s.scene, table, s.ragdollOptions())
	if err := s.animator.BuildSkeleton(layout); err != nil {
		return err
	}
	s.result.Layout = layout.Name

	if s.cfg.Simulation.Script != "" {
		s.luaLState = lua.NewState()
		luabind.Register(s.luaLState, "ragdoll", s.animator)
		if err := s.luaLState.DoFile(s.cfg.Simulation.Script); err != nil {
			return err
		}
	}
	return nil
}

// ragdollOptions maps the config onto the animator. A configured damping of
// 0 means none, not the library default.
func (s *System) ragdollOptions() ragdoll.Options {
	damping := s.cfg.Physics.AngularDamping
	if damping == 0 {
		damping = ragdoll.NoAngularDamping
	}
	return ragdoll.Options{
		Group:                       ragdoll.CollisionGroup(s.cfg.Physics.Group),
		Density:                     s.cfg.Physics.Density,
		AngularDamping:              damping,
		Logger:                      s.errLog,
		ReleaseJointsWhileAnimating: s.cfg.Ragdoll.ReleaseJoints,
	}
}

// tick runs one frame: feed the animation, step the world, read it back.
func (s *System) tick() error {
	before := s.animator.CurrentMode()
	if s.frame == s.cfg.Simulation.SwitchFrame {
		s.animator.SetMode(ragdoll.PhysicsDrives)
	}
	switch s.animator.CurrentMode() {
	case ragdoll.AnimationDrives:
		s.result.AnimationFrames++
	case ragdoll.PhysicsDrives:
		s.result.PhysicsFrames++
	}

	s.animator.FeedBoneTransforms(idlePose(s.boneCount, s.frame, s.cfg.Physics.TimeStep))
	s.animator.UpdateAnimationDrive()
	s.scene.Step(s.cfg.Physics.TimeStep)
	s.animator.UpdatePhysicsDrive()

	if err := s.callScript(); err != nil {
		return err
	}
	if s.animator.CurrentMode() != before {
		s.result.ModeSwitches++
	}
	s.frame++
	return nil
}

// callScript calls the script's onFrame, if it defines one.
func (s *System) callScript() error {
	if s.luaLState == nil {
		return nil
	}
	fn, ok := s.luaLState.GetGlobal("onFrame").(*lua.LFunction)
	if !ok {
		return nil
	}
	return s.luaLState.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(s.frame))
}

func (s *System) run() error {
	for s.frame < s.cfg.Simulation.Frames {
		if err := s.tick(); err != nil {
			return err
		}
	}
	s.result.Frames = s.frame
	s.result.Moving = s.animator.IsMoving(s.cfg.Ragdoll.MovingThreshold)
	s.result.Root = s.animator.RootPosition()
	return nil
}

func (s *System) shutdown() {
	if s.luaLState != nil {
		s.luaLState.Close()
	}
	if s.animator != nil {
		s.animator.Release()
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
}
