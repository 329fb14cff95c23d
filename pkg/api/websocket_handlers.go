package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	"github.com/pheeno-robot/controller/domain/teleop"
	customlog "github.com/pheeno-robot/controller/pkg/log"
)

// ControlWebSocketHandler handles incoming WebSocket messages for manual
// robot control. Each text frame is a Twist command; the teleop service
// validates it and installs it as the control loop's base command. When the
// connection drops the robot falls back to autonomous cruising.
func ControlWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, teleopService *teleop.TeleopService) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())

	defer func() {
		// Never leave the robot driving on a stale manual command.
		teleopService.SendStop()
		logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Control WS read error: %v", err)
			} else if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Infof("Control WS connection closed: %v", err)
			} else {
				logger.Infof("Control WS connection closed normally.")
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		var twist TwistMsg
		if err := json.Unmarshal(msg, &twist); err != nil {
			logger.Warnf("Failed to unmarshal Twist command from WS: %v. Message: %s", err, string(msg))
			continue
		}

		cmd := teleop.Command{
			Linear:  twist.Linear.X,
			Angular: twist.Angular.Z,
		}
		if err := teleopService.ValidateCommand(cmd); err != nil {
			logger.Warnf("Rejected Twist command from WS: %v", err)
			continue
		}

		logger.Debugf("Received Twist command via WS: LinearX=%.2f, AngularZ=%.2f", twist.Linear.X, twist.Angular.Z)
		teleopService.SendCommand(cmd)
	}
}
