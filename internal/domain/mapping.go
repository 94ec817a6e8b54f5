package domain

// PartMapping binds a recorded part to joints of one URDF.
// Position values bind to Joints one-to-one by index.
type PartMapping struct {
	Part   string   `json:"part" yaml:"part" toml:"part"`
	URDF   string   `json:"urdf" yaml:"urdf" toml:"urdf"`
	Joints []string `json:"joints" yaml:"joints" toml:"joints"`
}

// MappingTable is the static part -> URDF joint configuration.
type MappingTable struct {
	Parts []PartMapping `json:"parts" yaml:"parts" toml:"parts"`
}

// DefaultMappingTable returns the built-in table for the infeed cell recordings.
func DefaultMappingTable() MappingTable {
	return MappingTable{Parts: []PartMapping{
		{
			Part: "ARM",
			URDF: "infeed_and_squash_turner",
			Joints: []string{
				"scara_arm_1_joint",
				"scara_arm_2_joint",
				"scara_eoat_joint",
				"scara_arm_1_to_scara_arm_2_joint",
				"scara_arm_2_to_scara_eoat_joint",
				"scara_eoat_to_scara_tool_joint",
			},
		},
		{
			Part: "PEDESTAL",
			URDF: "robot_gantry",
			Joints: []string{
				"robot_gantry_xstage_joint",
				"robot_gantry_ystage_joint",
			},
		},
		{
			Part: "BAND_SEPARATOR",
			URDF: "band_separator",
			Joints: []string{
				"band_separator_base_to_ystage",
				"band_separator_ystage_to_zstage",
				"band_separator_zstage_to_xstage",
				"band_separator_extra_joint",
			},
		},
		{Part: "EOAT_BLADE", URDF: "eoat_blade", Joints: []string{"blade_actuator_joint"}},
		{Part: "EOAT_GRIPPER", URDF: "eoat_gripper", Joints: []string{"gripper_joint"}},
		{Part: "EOAT_EJECTOR", URDF: "eoat_ejector", Joints: []string{"ejector_joint_1", "ejector_joint_2"}},
	}}
}

// JointConfigs maps a URDF name to its joint name -> value configuration.
type JointConfigs map[string]map[string]float64

// Frame is one playback update delivered to the update handler.
type Frame struct {
	Index       int          `json:"index"`
	SequenceID  int64        `json:"sequenceId"`
	TimestampNs int64        `json:"timestampNs"`
	Joints      JointConfigs `json:"joints"`
}
