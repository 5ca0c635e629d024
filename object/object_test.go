package object_test

import (
	"context"
	"errors"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/graspbench/object"
	"go.viam.com/graspbench/sim/fake"
)

func TestRegisteredKinds(t *testing.T) {
	test.That(t, object.RegisteredKinds(), test.ShouldResemble, []string{"cuboid", "cylinder"})
}

func TestNewAllKinds(t *testing.T) {
	logger := golog.NewTestLogger(t)
	for _, kind := range object.RegisteredKinds() {
		engine := fake.NewEngine(fake.Config{Seed: 1}, logger)
		obj, err := object.New(context.Background(), engine, kind, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, obj.Kind(), test.ShouldEqual, kind)

		// defaults: 0.8m tall, resting with center at half height
		test.That(t, obj.Height(), test.ShouldAlmostEqual, 0.8)
		test.That(t, obj.SpawnPosition().Z, test.ShouldAlmostEqual, 0.4)
		test.That(t, obj.GraspCenter().Z, test.ShouldAlmostEqual, 0.4)

		z, err := obj.CurrentHeight(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, z, test.ShouldAlmostEqual, 0.4)
	}
}

func TestNewUnknownKind(t *testing.T) {
	logger := golog.NewTestLogger(t)
	engine := fake.NewEngine(fake.Config{Seed: 1}, logger)
	_, err := object.New(context.Background(), engine, "sphere", logger)
	test.That(t, err, test.ShouldNotBeNil)

	var confErr *object.ConfigurationError
	test.That(t, errors.As(err, &confErr), test.ShouldBeTrue)
	test.That(t, confErr.Kind, test.ShouldEqual, "sphere")
	test.That(t, err.Error(), test.ShouldContainSubstring, "sphere")
	test.That(t, err.Error(), test.ShouldContainSubstring, "cuboid")
}

func TestHeightOverride(t *testing.T) {
	logger := golog.NewTestLogger(t)
	engine := fake.NewEngine(fake.Config{Seed: 1}, logger)
	obj, err := object.New(context.Background(), engine, object.KindCylinder, logger, object.WithHeight(1.2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, obj.Height(), test.ShouldAlmostEqual, 1.2)
	test.That(t, obj.SpawnPosition().Z, test.ShouldAlmostEqual, 0.6)
}
