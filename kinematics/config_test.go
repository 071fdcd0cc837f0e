package kinematics

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/armcore/utils"
)

func TestParseChainJSONFile(t *testing.T) {
	iiwa, err := ParseChainJSONFile("testdata/iiwa7.json", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, iiwa.Name(), test.ShouldEqual, "iiwa")
	test.That(t, iiwa.Model(), test.ShouldEqual, "LBRiiwa7")
	test.That(t, iiwa.NumJoints(), test.ShouldEqual, 7)
	test.That(t, iiwa.BaseT0().Point().Z, test.ShouldAlmostEqual, 0.34)
	test.That(t, iiwa.JointNames(), test.ShouldResemble, []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7"})

	a1, err := iiwa.Link(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a1.Alpha(), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, a1.Limits().Min, test.ShouldAlmostEqual, utils.DegToRad(-170))
	test.That(t, a1.VelocityLimit(), test.ShouldAlmostEqual, utils.DegToRad(98))
	test.That(t, math.IsInf(a1.SoftVelocityLimit(), 1), test.ShouldBeTrue)
	a4, err := iiwa.Link(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a4.Robot2DHFlip(), test.ShouldBeTrue)

	sia, err := ParseChainJSONFile("testdata/sia5f.json", "renamed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sia.Name(), test.ShouldEqual, "renamed")
	test.That(t, sia.DLSJointSpeedSaturation(), test.ShouldEqual, 5.)
	u, err := sia.Link(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u.Robot2DHOffset(), test.ShouldAlmostEqual, math.Pi/2)

	scara, err := ParseChainJSONFile("testdata/scara_prismatic.json", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scara.DLSJointSpeedSaturation(), test.ShouldEqual, DefaultDLSJointSpeedSaturation)
	test.That(t, scara.JointTypes()[2], test.ShouldEqual, PrismaticJoint)
	quill, err := scara.Link(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, quill.Limits(), test.ShouldResemble, Limit{Min: 0, Max: 0.2})
	test.That(t, scara.NTe().At(2, 2), test.ShouldAlmostEqual, -1)
	test.That(t, scara.NTe().Point().Z, test.ShouldAlmostEqual, -0.05)

	_, err = ParseChainJSONFile("testdata/missing.json", "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUnmarshalChainJSON(t *testing.T) {
	_, err := UnmarshalChainJSON(nil, "")
	test.That(t, err, test.ShouldEqual, ErrNoChainInformation)

	_, err = UnmarshalChainJSON([]byte(`{"links": [`), "")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = UnmarshalChainJSON([]byte(`{"links": [{"type": "spherical"}]}`), "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "link 0")

	_, err = UnmarshalChainJSON([]byte(`{"links": [{"type": "revolute", "min": 1, "max": -1}]}`), "")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = UnmarshalChainJSON([]byte(`{"base": {"matrix": [2,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1]}, "links": []}`), "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "base")

	c, err := UnmarshalChainJSON([]byte(`{
		"tool": {"matrix": [1,0,0,0.1, 0,1,0,0, 0,0,1,0, 0,0,0,1]},
		"links": [{"type": "r", "a": 1}]
	}`), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Name(), test.ShouldEqual, DefaultChainName)
	ee, err := c.Fkine([]float64{0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ee.Point().X, test.ShouldAlmostEqual, 1.1)
}

func TestChainConfigFromAttributes(t *testing.T) {
	attrs := map[string]interface{}{
		"name":              "attr",
		"angles_in_degrees": true,
		"links": []interface{}{
			map[string]interface{}{"type": "revolute", "a": "0.5", "alpha": 90, "min": -90, "max": 90},
			map[string]interface{}{"type": "prismatic", "a": 0, "theta": 0, "max": 0.3, "min": 0},
		},
	}
	cfg, err := ChainConfigFromAttributes(attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(cfg.Links), test.ShouldEqual, 2)
	test.That(t, cfg.Links[0].A, test.ShouldEqual, 0.5)

	c, err := cfg.ParseConfig("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Name(), test.ShouldEqual, "attr")
	test.That(t, c.Limits()[0].Max, test.ShouldAlmostEqual, math.Pi/2)
	// prismatic limits stay in meters
	test.That(t, c.Limits()[1].Max, test.ShouldAlmostEqual, 0.3)

	_, err = ChainConfigFromAttributes(nil)
	test.That(t, err, test.ShouldEqual, ErrNoChainInformation)

	_, err = ChainConfigFromAttributes(map[string]interface{}{"linkz": []interface{}{}})
	test.That(t, err, test.ShouldNotBeNil)
}
